package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ues-sigs/guarderia/core/absence"
	"github.com/ues-sigs/guarderia/core/user"
)

func submitPermission(t *testing.T, app http.Handler, token, childID string) absence.Result {
	t.Helper()
	body := marchallObj(t, absence.NewPermission{
		ChildID:   childID,
		Type:      absence.TypeMedical,
		StartDate: time.Now(),
		Reason:    "control pediátrico",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/permissions", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submitPermission(): code = %v; body %s", rec.Code, rec.Body.String())
	}
	var res absence.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	return res
}

func resolvePermission(app http.Handler, token, id, decision, notes string) *http.Response {
	body := []byte(`{"decision": "` + decision + `", "notes": "` + notes + `"}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/permissions/"+id+"/resolve", token, body)
	app.ServeHTTP(rec, req)
	return rec.Result()
}

func Test_absenceApi_submit(t *testing.T) {
	app := setup(t)

	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	stranger := createUser(t, "Padre", "padre1", "padre@test.sv", "", []string{user.RoleParent}, true)
	ch := createChild(t, "Sofía Ramírez", "madre@test.sv")
	linkGuardian(t, parent, ch)

	body := marchallObj(t, absence.NewPermission{
		ChildID:   ch.ID,
		Type:      absence.TypeMedical,
		StartDate: time.Now(),
		Reason:    "control pediátrico",
	})

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/permissions", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v; want 401", rec.Code)
		}
	})

	t.Run("unknown type refused", func(t *testing.T) {
		bad := marchallObj(t, absence.NewPermission{ChildID: ch.ID, Type: "vacation", StartDate: time.Now(), Reason: "lol"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/permissions", getToken(t, parent), bad)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want 400; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unrelated parent refused", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/permissions", getToken(t, stranger), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want 403; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("guardian submits", func(t *testing.T) {
		res := submitPermission(t, app, getToken(t, parent), ch.ID)
		if res.Permission.Status != absence.StatusPending {
			t.Errorf("status = %q; want pending", res.Permission.Status)
		}
		if res.Warning != "" {
			t.Errorf("unexpected warning %q", res.Warning)
		}
		if n := recorder.Sent("permission-submitted"); n != 1 {
			t.Errorf("permission-submitted notifications = %d; want 1", n)
		}
	})

	t.Run("confirmation failure is a warning", func(t *testing.T) {
		recorder.Fail = true
		defer func() { recorder.Fail = false }()

		res := submitPermission(t, app, getToken(t, parent), ch.ID)
		if res.Warning != absence.WarnGuardianNotNotified {
			t.Errorf("warning = %q; want %q", res.Warning, absence.WarnGuardianNotNotified)
		}
	})
}

func Test_absenceApi_resolve(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	ch := createChild(t, "Sofía Ramírez", "madre@test.sv")
	linkGuardian(t, parent, ch)
	section, _ := createSectionWithTeacher(t, "carmen@test.sv")
	assignChild(t, ch, section)

	submitted := submitPermission(t, app, getToken(t, parent), ch.ID)
	id := submitted.Permission.ID

	t.Run("admin required", func(t *testing.T) {
		resp := resolvePermission(app, getToken(t, parent), id, absence.StatusApproved, "")
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("code = %v; want 403", resp.StatusCode)
		}
	})

	t.Run("unknown decision refused", func(t *testing.T) {
		resp := resolvePermission(app, getToken(t, admin), id, "maybe", "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("code = %v; want 400", resp.StatusCode)
		}
	})

	t.Run("approval notifies the section teacher", func(t *testing.T) {
		resp := resolvePermission(app, getToken(t, admin), id, absence.StatusApproved, "presentar constancia")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("code = %v; want 200", resp.StatusCode)
		}
		var res absence.Result
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if res.Permission.Status != absence.StatusApproved {
			t.Errorf("status = %q; want approved", res.Permission.Status)
		}
		if !res.Permission.ResolvedAt.Valid {
			t.Error("resolved_at not set")
		}
		if res.Warning != "" {
			t.Errorf("unexpected warning %q", res.Warning)
		}
		if n := recorder.Sent("permission-approved"); n != 1 {
			t.Errorf("permission-approved notifications = %d; want 1", n)
		}
	})

	t.Run("already resolved conflicts", func(t *testing.T) {
		resp := resolvePermission(app, getToken(t, admin), id, absence.StatusRejected, "")
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("code = %v; want 409", resp.StatusCode)
		}
	})

	t.Run("rejection does not notify", func(t *testing.T) {
		recorder.Reset()
		other := submitPermission(t, app, getToken(t, parent), ch.ID)

		resp := resolvePermission(app, getToken(t, admin), other.Permission.ID, absence.StatusRejected, "sin constancia")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("code = %v; want 200", resp.StatusCode)
		}
		if n := recorder.Sent("permission-approved"); n != 0 {
			t.Errorf("permission-approved notifications = %d; want 0", n)
		}
	})

	t.Run("approval without section teacher warns", func(t *testing.T) {
		unassigned := createChild(t, "Mateo López", "madre@test.sv")
		linkGuardian(t, parent, unassigned)
		sub := submitPermission(t, app, getToken(t, parent), unassigned.ID)

		resp := resolvePermission(app, getToken(t, admin), sub.Permission.ID, absence.StatusApproved, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("code = %v; want 200", resp.StatusCode)
		}
		var res absence.Result
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if res.Warning != absence.WarnTeacherNotNotified {
			t.Errorf("warning = %q; want %q", res.Warning, absence.WarnTeacherNotNotified)
		}
	})
}

func Test_absenceApi_query(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	other := createUser(t, "Padre", "padre1", "padre@test.sv", "", []string{user.RoleParent}, true)
	ch1 := createChild(t, "Sofía Ramírez", "madre@test.sv")
	ch2 := createChild(t, "Mateo López", "padre@test.sv")
	linkGuardian(t, parent, ch1)
	linkGuardian(t, other, ch2)

	submitPermission(t, app, getToken(t, parent), ch1.ID)
	submitPermission(t, app, getToken(t, other), ch2.ID)

	fetch := func(t *testing.T, token, path string) []absence.Permission {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var perms []absence.Permission
		if err := json.Unmarshal(rec.Body.Bytes(), &perms); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return perms
	}

	t.Run("admin sees all", func(t *testing.T) {
		if got := len(fetch(t, getToken(t, admin), "/v1/permissions")); got != 2 {
			t.Errorf("permissions = %d; want 2", got)
		}
	})

	t.Run("parents see only their requests", func(t *testing.T) {
		perms := fetch(t, getToken(t, parent), "/v1/permissions")
		if len(perms) != 1 {
			t.Fatalf("permissions = %d; want 1", len(perms))
		}
		if perms[0].ChildID != ch1.ID {
			t.Errorf("child = %v; want %v", perms[0].ChildID, ch1.ID)
		}
	})

	t.Run("pending queue is admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/permissions/pending", getToken(t, parent))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want 403", rec.Code)
		}

		if got := len(fetch(t, getToken(t, admin), "/v1/permissions/pending")); got != 2 {
			t.Errorf("pending = %d; want 2", got)
		}
	})
}
