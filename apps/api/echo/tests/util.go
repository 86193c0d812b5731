package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	. "github.com/ues-sigs/guarderia/apps/api/echo"
	"github.com/ues-sigs/guarderia/core/absence"
	"github.com/ues-sigs/guarderia/core/attendance"
	"github.com/ues-sigs/guarderia/core/child"
	"github.com/ues-sigs/guarderia/core/classroom"
	"github.com/ues-sigs/guarderia/core/notify"
	"github.com/ues-sigs/guarderia/core/user"
	emailsvc "github.com/ues-sigs/guarderia/services/email"
	inmemdb "github.com/ues-sigs/guarderia/storage/database/inmem"
)

var (
	usrRepo       user.Repository
	childRepo     child.Repository
	classroomRepo classroom.Repository

	usrSvc        user.Service
	childSvc      child.Service
	classroomSvc  classroom.Service
	attendanceSvc attendance.Service
	absenceSvc    absence.Service

	recorder *notify.Recorder

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func setup(t *testing.T) Server {
	t.Helper()

	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	childRepo = inmemdb.NewChildRepository(db)
	classroomRepo = inmemdb.NewClassroomRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock()
	recorder = notify.NewRecorder()

	usrSvc = user.NewServiceMock(usrRepo, mailSvc)
	childSvc = child.NewService(childRepo)
	classroomSvc = classroom.NewService(classroomRepo)
	attendanceSvc = attendance.NewService(inmemdb.NewAttendanceRepository(db), childSvc, recorder)
	absenceSvc = absence.NewService(inmemdb.NewAbsenceRepository(db), childSvc, classroomSvc, recorder)

	return NewServer(
		&Options{
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			ChildSvc:       childSvc,
			ClassroomSvc:   classroomSvc,
			AttendanceSvc:  attendanceSvc,
			AbsenceSvc:     absenceSvc,
		},
	)
}

// Fixtures

func createUser(t *testing.T, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()
	usr := user.User{Name: name, Username: uname, Email: email, Roles: roles}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword(): %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createChild(t *testing.T, name, guardianEmail string) child.Child {
	t.Helper()
	now := time.Now().UTC()
	ch := child.Child{
		FullName:         name,
		Age:              4,
		GuardianName:     "Responsable " + name,
		GuardianPhone:    "7000-0000",
		GuardianEmail:    null.NewString(guardianEmail, guardianEmail != ""),
		GuardianRelation: "madre",
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	ch, err := childRepo.CreateChild(context.Background(), ch)
	if err != nil {
		t.Fatalf("CreateChild(): %v", err)
	}
	return ch
}

func linkGuardian(t *testing.T, usr user.User, ch child.Child) {
	t.Helper()
	if _, err := childRepo.LinkGuardian(context.Background(), usr.ID, ch.ID); err != nil {
		t.Fatalf("LinkGuardian(): %v", err)
	}
}

func createSectionWithTeacher(t *testing.T, teacherEmail string) (classroom.Section, classroom.Teacher) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	teach, err := classroomRepo.CreateTeacher(ctx, classroom.Teacher{
		FullName:  "Seño Carmen",
		Email:     null.NewString(teacherEmail, teacherEmail != ""),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher(): %v", err)
	}
	room, err := classroomRepo.CreateRoom(ctx, classroom.Room{Name: "Sala 1", Capacity: 15, Active: true, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateRoom(): %v", err)
	}
	section, err := classroomRepo.CreateSection(ctx, classroom.Section{
		Name:      "Maternal A",
		RoomID:    room.ID,
		TeacherID: null.StringFrom(teach.ID),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSection(): %v", err)
	}
	return section, teach
}

func assignChild(t *testing.T, ch child.Child, section classroom.Section) {
	t.Helper()
	_, err := classroomRepo.UpsertAssignment(context.Background(), classroom.Assignment{
		ChildID:    ch.ID,
		SectionID:  section.ID,
		AssignedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpsertAssignment(): %v", err)
	}
}

// HTTP plumbing

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
