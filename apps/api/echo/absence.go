package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/absence"
	"github.com/ues-sigs/guarderia/core/user"
)

type absenceApi struct {
	svc     absence.Service
	userSvc user.Service
}

func registerAbsenceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc absence.Service, userSvc user.Service) {
	api := absenceApi{svc: svc, userSvc: userSvc}

	pg := g.Group("/permissions", jwt)
	pg.POST("", api.submit)
	pg.GET("", api.query)
	pg.GET("/pending", api.pending, adminMiddleware())
	pg.GET("/:id", api.retrieve)
	pg.POST("/:id/resolve", api.resolve, adminMiddleware())
}

func (api *absenceApi) submit(ctx echo.Context) error {
	var data absence.NewPermission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPermission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.svc.Submit(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "submitting permission")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *absenceApi) query(ctx echo.Context) error {
	filter := new(absence.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []absence.Permission{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	perms, err := api.svc.Query(ctx.Request().Context(), actor, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying permissions")
	}
	if perms == nil {
		perms = []absence.Permission{}
	}
	return ctx.JSON(http.StatusOK, perms)
}

func (api *absenceApi) pending(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	perms, err := api.svc.Pending(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "querying pending permissions")
	}
	if perms == nil {
		perms = []absence.Permission{}
	}
	return ctx.JSON(http.StatusOK, perms)
}

func (api *absenceApi) retrieve(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	p, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding permission by ID")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *absenceApi) resolve(ctx echo.Context) error {
	var data struct {
		Decision string `json:"decision" validate:"required,oneof=approved rejected"`
		Notes    string `json:"notes"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding resolution")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.svc.Resolve(ctx.Request().Context(), actor, ctx.Param("id"), data.Decision, data.Notes)
	if err != nil {
		return errors.Wrap(err, "resolving permission")
	}
	return ctx.JSON(http.StatusOK, res)
}
