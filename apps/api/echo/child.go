package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/child"
	"github.com/ues-sigs/guarderia/core/user"
)

type childApi struct {
	svc     child.Service
	userSvc user.Service
}

func registerChildAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc child.Service, userSvc user.Service) {
	api := childApi{svc: svc, userSvc: userSvc}

	cg := g.Group("/children", jwt)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, adminMiddleware())
	cg.DELETE("/:id", api.deactivate, adminMiddleware())

	cg.POST("/:id/guardians", api.addGuardian, adminMiddleware())

	cg.POST("/:id/pickups", api.authorizePickup, adminMiddleware())
	cg.GET("/:id/pickups", api.pickups)

	pg := g.Group("/pickups", jwt, adminMiddleware())
	pg.PUT("/:id", api.updatePickup)
	pg.DELETE("/:id", api.removePickup)
}

func (api *childApi) create(ctx echo.Context) error {
	var data child.NewChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChild")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ch, err := api.svc.Register(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "registering child")
	}
	return ctx.JSON(http.StatusCreated, ch)
}

func (api *childApi) query(ctx echo.Context) error {
	filter := new(child.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []child.Child{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	children, err := api.svc.Query(ctx.Request().Context(), actor, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	if children == nil {
		children = []child.Child{}
	}
	return ctx.JSON(http.StatusOK, children)
}

func (api *childApi) retrieve(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ch, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding child by ID")
	}
	return ctx.JSON(http.StatusOK, ch)
}

func (api *childApi) update(ctx echo.Context) error {
	var data child.UpdateChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChild")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ch, err := api.svc.Update(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating child")
	}
	return ctx.JSON(http.StatusOK, ch)
}

func (api *childApi) deactivate(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ch, err := api.svc.Deactivate(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deactivating child")
	}
	return ctx.JSON(http.StatusOK, ch)
}

func (api *childApi) addGuardian(ctx echo.Context) error {
	var data struct {
		UserID string `json:"user_id" validate:"required,uuid4"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding guardian")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	gs, err := api.svc.AddGuardian(ctx.Request().Context(), actor, data.UserID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "adding guardian")
	}
	return ctx.JSON(http.StatusCreated, gs)
}

func (api *childApi) authorizePickup(ctx echo.Context) error {
	var data child.NewPickupPerson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPickupPerson")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	p, err := api.svc.AuthorizePickup(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "authorizing pickup person")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *childApi) pickups(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	people, err := api.svc.Pickups(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying pickup people")
	}
	if people == nil {
		people = []child.PickupPerson{}
	}
	return ctx.JSON(http.StatusOK, people)
}

func (api *childApi) updatePickup(ctx echo.Context) error {
	var data child.NewPickupPerson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPickupPerson")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	p, err := api.svc.UpdatePickup(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating pickup person")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *childApi) removePickup(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.RemovePickup(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing pickup person")
	}
	return ctx.NoContent(http.StatusNoContent)
}
