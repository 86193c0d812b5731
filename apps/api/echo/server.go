package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/absence"
	"github.com/ues-sigs/guarderia/core/attendance"
	"github.com/ues-sigs/guarderia/core/child"
	"github.com/ues-sigs/guarderia/core/classroom"
	"github.com/ues-sigs/guarderia/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger        core.Logger
		UserSvc       user.Service
		ChildSvc      child.Service
		ClassroomSvc  classroom.Service
		AttendanceSvc attendance.Service
		AbsenceSvc    absence.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo

		// closed by the error handler on unrecoverable errors
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerChildAPI(v1, jwt, s.opts.ChildSvc, s.opts.UserSvc)
	registerClassroomAPI(v1, jwt, s.opts.ClassroomSvc, s.opts.UserSvc)
	registerAttendanceAPI(v1, jwt, s.opts.AttendanceSvc, s.opts.UserSvc)
	registerAbsenceAPI(v1, jwt, s.opts.AbsenceSvc, s.opts.UserSvc)
}

func (s *server) signalShutdown() {
	close(s.shutdown)
}

func (s *server) Start() {
	go func() {
		<-s.shutdown
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()
		_ = s.Stop(ctx)
	}()
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Bienvenido a la API de "+core.Conf.AppName+"!")
}
