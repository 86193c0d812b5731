package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ues-sigs/guarderia/core/classroom"
	"github.com/ues-sigs/guarderia/core/user"
)

func Test_classroomApi_setup(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	adminToken := getToken(t, admin)

	post := func(t *testing.T, token, path string, body []byte) (*http.Response, []byte) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, path, token, body)
		app.ServeHTTP(rec, req)
		return rec.Result(), rec.Body.Bytes()
	}

	var teacherID, roomID, sectionID string

	t.Run("create teacher", func(t *testing.T) {
		body := marchallObj(t, classroom.NewTeacher{FullName: "Seño Carmen", Phone: "7222-2222", Email: null.StringFrom("carmen@test.sv")})
		resp, data := post(t, adminToken, "/v1/teachers", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("code = %v; body %s", resp.StatusCode, data)
		}
		var teach classroom.Teacher
		if err := json.Unmarshal(data, &teach); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		teacherID = teach.ID
	})

	t.Run("parents cannot create teachers", func(t *testing.T) {
		body := marchallObj(t, classroom.NewTeacher{FullName: "Otro"})
		resp, _ := post(t, getToken(t, parent), "/v1/teachers", body)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("code = %v; want 403", resp.StatusCode)
		}
	})

	t.Run("create room", func(t *testing.T) {
		body := marchallObj(t, classroom.NewRoom{Name: "Sala 1", Capacity: 15})
		resp, data := post(t, adminToken, "/v1/rooms", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("code = %v; body %s", resp.StatusCode, data)
		}
		var room classroom.Room
		if err := json.Unmarshal(data, &room); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		roomID = room.ID
	})

	t.Run("room needs positive capacity", func(t *testing.T) {
		body := marchallObj(t, classroom.NewRoom{Name: "Sala 0", Capacity: 0})
		resp, _ := post(t, adminToken, "/v1/rooms", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("code = %v; want 400", resp.StatusCode)
		}
	})

	t.Run("create section", func(t *testing.T) {
		body := marchallObj(t, classroom.NewSection{Name: "Maternal A", RoomID: roomID, TeacherID: null.StringFrom(teacherID)})
		resp, data := post(t, adminToken, "/v1/sections", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("code = %v; body %s", resp.StatusCode, data)
		}
		var section classroom.Section
		if err := json.Unmarshal(data, &section); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		sectionID = section.ID
	})

	t.Run("section needs an existing room", func(t *testing.T) {
		body := marchallObj(t, classroom.NewSection{Name: "Maternal B", RoomID: "00000000-0000-4000-8000-000000000000"})
		resp, _ := post(t, adminToken, "/v1/sections", body)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("code = %v; want 404", resp.StatusCode)
		}
	})

	t.Run("schedules", func(t *testing.T) {
		add := func(weekday time.Weekday, start, end string) *http.Response {
			body := marchallObj(t, classroom.NewSchedule{Weekday: weekday, StartTime: start, EndTime: end})
			resp, _ := post(t, adminToken, "/v1/sections/"+sectionID+"/schedules", body)
			return resp
		}

		if resp := add(time.Monday, "08:00", "12:00"); resp.StatusCode != http.StatusCreated {
			t.Fatalf("first schedule: code = %v", resp.StatusCode)
		}
		// same weekday, overlapping window
		if resp := add(time.Monday, "11:00", "15:00"); resp.StatusCode != http.StatusConflict {
			t.Errorf("overlap: code = %v; want 409", resp.StatusCode)
		}
		// adjacent window is fine
		if resp := add(time.Monday, "12:00", "16:00"); resp.StatusCode != http.StatusCreated {
			t.Errorf("adjacent: code = %v; want 201", resp.StatusCode)
		}
		// other weekday is fine
		if resp := add(time.Tuesday, "08:00", "12:00"); resp.StatusCode != http.StatusCreated {
			t.Errorf("other weekday: code = %v; want 201", resp.StatusCode)
		}
		// end must be after start
		if resp := add(time.Wednesday, "12:00", "08:00"); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("inverted window: code = %v; want 400", resp.StatusCode)
		}

		req, rec := newAuthRequest(http.MethodGet, "/v1/sections/"+sectionID+"/schedules", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var schedules []classroom.Schedule
		if err := json.Unmarshal(rec.Body.Bytes(), &schedules); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(schedules) != 3 {
			t.Errorf("schedules = %d; want 3", len(schedules))
		}
	})

	t.Run("assignment", func(t *testing.T) {
		ch := createChild(t, "Sofía Ramírez", "madre@test.sv")

		body := marchallObj(t, map[string]string{"section_id": sectionID})
		resp, data := post(t, adminToken, "/v1/children/"+ch.ID+"/section", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("code = %v; body %s", resp.StatusCode, data)
		}
		var a classroom.Assignment
		if err := json.Unmarshal(data, &a); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if a.SectionID != sectionID {
			t.Errorf("section = %v; want %v", a.SectionID, sectionID)
		}

		// reassigning replaces, never duplicates
		resp, data = post(t, adminToken, "/v1/children/"+ch.ID+"/section", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("code = %v; body %s", resp.StatusCode, data)
		}
		var b classroom.Assignment
		if err := json.Unmarshal(data, &b); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if b.ID != a.ID {
			t.Errorf("reassignment created a second row: %v != %v", b.ID, a.ID)
		}

		req, rec := newAuthRequest(http.MethodGet, "/v1/children/"+ch.ID+"/section", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}
