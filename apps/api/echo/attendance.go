package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/attendance"
	"github.com/ues-sigs/guarderia/core/user"
)

const dateLayout = "2006-01-02"

type attendanceApi struct {
	svc     attendance.Service
	userSvc user.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc attendance.Service, userSvc user.Service) {
	api := attendanceApi{svc: svc, userSvc: userSvc}

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.set, staffMiddleware())
	ag.GET("", api.register)
	ag.GET("/children/:id", api.childHistory)
}

func (api *attendanceApi) set(ctx echo.Context) error {
	var data attendance.SetAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetAttendance")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.svc.Set(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "setting attendance")
	}
	return ctx.JSON(http.StatusOK, res)
}

// register returns the attendance sheet for a given date (today by default),
// one entry per child visible to the caller.
func (api *attendanceApi) register(ctx echo.Context) error {
	date := time.Now()
	if raw := ctx.QueryParam("date"); raw != "" {
		var err error
		if date, err = time.Parse(dateLayout, raw); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "invalid date, expected YYYY-MM-DD"})
		}
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	entries, err := api.svc.Register(ctx.Request().Context(), actor, date)
	if err != nil {
		return errors.Wrap(err, "building attendance register")
	}
	if entries == nil {
		entries = []attendance.DayEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *attendanceApi) childHistory(ctx echo.Context) error {
	var from, until time.Time
	var err error
	if raw := ctx.QueryParam("from"); raw != "" {
		if from, err = time.Parse(dateLayout, raw); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "from", Error: "invalid date, expected YYYY-MM-DD"})
		}
	}
	if raw := ctx.QueryParam("until"); raw != "" {
		if until, err = time.Parse(dateLayout, raw); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "until", Error: "invalid date, expected YYYY-MM-DD"})
		}
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	records, err := api.svc.ChildHistory(ctx.Request().Context(), actor, ctx.Param("id"), from, until)
	if err != nil {
		return errors.Wrap(err, "querying attendance history")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}
