package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/classroom"
	"github.com/ues-sigs/guarderia/core/user"
)

type classroomApi struct {
	svc     classroom.Service
	userSvc user.Service
}

func registerClassroomAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc classroom.Service, userSvc user.Service) {
	api := classroomApi{svc: svc, userSvc: userSvc}

	tg := g.Group("/teachers", jwt)
	tg.POST("", api.createTeacher, adminMiddleware())
	tg.GET("", api.teachers, staffMiddleware())

	rg := g.Group("/rooms", jwt)
	rg.POST("", api.createRoom, adminMiddleware())
	rg.GET("", api.rooms, staffMiddleware())

	sg := g.Group("/sections", jwt)
	sg.POST("", api.createSection, adminMiddleware())
	sg.GET("", api.sections, staffMiddleware())
	sg.POST("/:id/schedules", api.addSchedule, adminMiddleware())
	sg.GET("/:id/schedules", api.schedules, staffMiddleware())

	g.DELETE("/schedules/:id", api.removeSchedule, jwt, adminMiddleware())

	g.POST("/children/:id/section", api.assignChild, jwt, adminMiddleware())
	g.GET("/children/:id/section", api.childAssignment, jwt, staffMiddleware())
}

func (api *classroomApi) createTeacher(ctx echo.Context) error {
	var data classroom.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	t, err := api.svc.CreateTeacher(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *classroomApi) teachers(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	teachers, err := api.svc.Teachers(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []classroom.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *classroomApi) createRoom(ctx echo.Context) error {
	var data classroom.NewRoom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRoom")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	r, err := api.svc.CreateRoom(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *classroomApi) rooms(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	rooms, err := api.svc.Rooms(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	if rooms == nil {
		rooms = []classroom.Room{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *classroomApi) createSection(ctx echo.Context) error {
	var data classroom.NewSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	s, err := api.svc.CreateSection(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating section")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *classroomApi) sections(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	sections, err := api.svc.Sections(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	if sections == nil {
		sections = []classroom.Section{}
	}
	return ctx.JSON(http.StatusOK, sections)
}

func (api *classroomApi) assignChild(ctx echo.Context) error {
	var data struct {
		SectionID string `json:"section_id" validate:"required,uuid4"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding assignment")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.AssignChild(ctx.Request().Context(), actor, ctx.Param("id"), data.SectionID)
	if err != nil {
		return errors.Wrap(err, "assigning child to section")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *classroomApi) childAssignment(ctx echo.Context) error {
	a, err := api.svc.ChildAssignment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding child assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *classroomApi) addSchedule(ctx echo.Context) error {
	var data classroom.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	s, err := api.svc.AddSchedule(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding schedule")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *classroomApi) schedules(ctx echo.Context) error {
	schedules, err := api.svc.SectionSchedules(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying schedules")
	}
	if schedules == nil {
		schedules = []classroom.Schedule{}
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *classroomApi) removeSchedule(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.RemoveSchedule(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing schedule")
	}
	return ctx.NoContent(http.StatusNoContent)
}
