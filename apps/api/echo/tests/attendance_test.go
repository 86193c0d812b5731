package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ues-sigs/guarderia/core/attendance"
	"github.com/ues-sigs/guarderia/core/user"
)

func Test_attendanceApi_set(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "Seño", "carmen", "carmen@test.sv", "", []string{user.RoleTeacher}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	ch := createChild(t, "Sofía Ramírez", "madre@test.sv")

	today := time.Now()
	setBody := func(present bool, justification string) []byte {
		return marchallObj(t, attendance.SetAttendance{
			ChildID:       ch.ID,
			Date:          today,
			Present:       present,
			Justification: null.NewString(justification, justification != ""),
		})
	}

	tests := []httpTest{
		{name: "Auth required", body: setBody(true, ""), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "parents cannot record", body: setBody(true, ""), token: getToken(t, parent),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "child is required", token: getToken(t, teacher),
			body:     marchallObj(t, attendance.SetAttendance{Date: today, Present: true}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"child_id": "this field is required"}),
		},
		{name: "mark present", body: setBody(true, ""), token: getToken(t, teacher), wantCode: http.StatusOK},
		{name: "re-set same day updates", body: setBody(false, "cita médica"), token: getToken(t, teacher), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var res attendance.Result
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if res.Record.ChildID != ch.ID {
					t.Errorf("record child = %v; want %v", res.Record.ChildID, ch.ID)
				}
				if res.Warning != "" {
					t.Errorf("unexpected warning %q", res.Warning)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// justified absences never page the guardian
	if n := recorder.Sent("unexcused-absence"); n != 0 {
		t.Errorf("unexcused-absence notifications = %d; want 0", n)
	}
}

func Test_attendanceApi_unexcusedAbsenceNotifiesGuardian(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "Seño", "carmen", "carmen@test.sv", "", []string{user.RoleTeacher}, true)
	ch := createChild(t, "Sofía Ramírez", "madre@test.sv")
	token := getToken(t, teacher)

	body := marchallObj(t, attendance.SetAttendance{ChildID: ch.ID, Date: time.Now(), Present: false})
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", token, body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	var res attendance.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if res.Warning != "" {
		t.Errorf("unexpected warning %q", res.Warning)
	}
	if n := recorder.Sent("unexcused-absence"); n != 1 {
		t.Errorf("unexcused-absence notifications = %d; want 1", n)
	}
	if len(recorder.Events) > 0 && recorder.Events[0].To.Address != "madre@test.sv" {
		t.Errorf("notified %q; want guardian", recorder.Events[0].To.Address)
	}
}

func Test_attendanceApi_notificationFailureIsAWarning(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "Seño", "carmen", "carmen@test.sv", "", []string{user.RoleTeacher}, true)
	ch := createChild(t, "Sofía Ramírez", "madre@test.sv")
	recorder.Fail = true

	body := marchallObj(t, attendance.SetAttendance{ChildID: ch.ID, Date: time.Now(), Present: false})
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)

	// the record is committed even though the guardian could not be reached
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	var res attendance.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if res.Warning != attendance.WarnGuardianNotNotified {
		t.Errorf("warning = %q; want %q", res.Warning, attendance.WarnGuardianNotNotified)
	}
}

func Test_attendanceApi_register(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	ch1 := createChild(t, "Sofía Ramírez", "madre@test.sv")
	ch2 := createChild(t, "Mateo López", "")
	linkGuardian(t, parent, ch1)

	today := time.Now()
	body := marchallObj(t, attendance.SetAttendance{ChildID: ch1.ID, Date: today, Present: true})
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("seeding attendance failed: %v %s", rec.Code, rec.Body.String())
	}

	fetch := func(token string) []attendance.DayEntry {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance?date="+today.Format("2006-01-02"), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var entries []attendance.DayEntry
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return entries
	}

	t.Run("staff sees every active child", func(t *testing.T) {
		entries := fetch(getToken(t, admin))
		if len(entries) != 2 {
			t.Fatalf("entries = %d; want 2", len(entries))
		}
		var recorded, missing int
		for _, e := range entries {
			if e.Record != nil {
				recorded++
			} else {
				missing++
			}
		}
		if recorded != 1 || missing != 1 {
			t.Errorf("recorded = %d, missing = %d; want 1 and 1", recorded, missing)
		}
	})

	t.Run("parents see only their children", func(t *testing.T) {
		entries := fetch(getToken(t, parent))
		if len(entries) != 1 {
			t.Fatalf("entries = %d; want 1", len(entries))
		}
		if entries[0].Child.ID != ch1.ID {
			t.Errorf("child = %v; want %v", entries[0].Child.ID, ch1.ID)
		}
		_ = ch2
	})

	t.Run("invalid date", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance?date=lol", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want 400", rec.Code)
		}
	})
}

func Test_attendanceApi_childHistory(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "Seño", "carmen", "carmen@test.sv", "", []string{user.RoleTeacher}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	stranger := createUser(t, "Padre", "padre1", "padre@test.sv", "", []string{user.RoleParent}, true)
	ch := createChild(t, "Sofía Ramírez", "madre@test.sv")
	linkGuardian(t, parent, ch)

	body := marchallObj(t, attendance.SetAttendance{ChildID: ch.ID, Date: time.Now(), Present: true})
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("seeding attendance failed: %v %s", rec.Code, rec.Body.String())
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized},
		{name: "guardian allowed", token: getToken(t, parent), wantCode: http.StatusOK},
		{name: "staff allowed", token: getToken(t, teacher), wantCode: http.StatusOK},
		{name: "unrelated parent refused", token: getToken(t, stranger), wantCode: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/children/"+ch.ID, tt.token)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var records []attendance.Record
			if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
				t.Fatalf("json.Unmarshal(): %v", err)
			}
			if len(records) != 1 {
				t.Errorf("records = %d; want 1", len(records))
			}
		})
	}
}
