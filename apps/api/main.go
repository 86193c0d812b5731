package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/ues-sigs/guarderia/apps/api/echo"
	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/absence"
	"github.com/ues-sigs/guarderia/core/attendance"
	"github.com/ues-sigs/guarderia/core/child"
	"github.com/ues-sigs/guarderia/core/classroom"
	"github.com/ues-sigs/guarderia/core/notify"
	"github.com/ues-sigs/guarderia/core/user"
	appfs "github.com/ues-sigs/guarderia/fs"
	emailsvc "github.com/ues-sigs/guarderia/services/email"
	logsvc "github.com/ues-sigs/guarderia/services/logger"
	"github.com/ues-sigs/guarderia/storage/database"
	sqlxrepos "github.com/ues-sigs/guarderia/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)

	core.SetTemplateFS(appfs.FS)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(logger, err)
	defer db.Close()
	errAndDie(logger, database.Migrate(db))
	sdb := sqlx.NewDb(db, core.Conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	switch {
	case core.Conf.SendgridApiKey != "":
		mailSvc = emailsvc.NewSendgridService(logger)
	case core.Conf.Debug:
		mailSvc = emailsvc.NewConsoleService()
	}
	dispatcher := notify.NewEmailDispatcher(mailSvc, logger)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sdb), mailSvc)
	childSvc := child.NewService(sqlxrepos.NewChildRepository(sdb))
	classroomSvc := classroom.NewService(sqlxrepos.NewClassroomRepository(sdb))
	attendanceSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(sdb), childSvc, dispatcher)
	absenceSvc := absence.NewService(sqlxrepos.NewAbsenceRepository(sdb), childSvc, classroomSvc, dispatcher)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:       core.Conf.Server.Addr,
			Logger:        logger,
			UserSvc:       usrSvc,
			ChildSvc:      childSvc,
			ClassroomSvc:  classroomSvc,
			AttendanceSvc: attendanceSvc,
			AbsenceSvc:    absenceSvc,
		},
	)
	app.Start()
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
