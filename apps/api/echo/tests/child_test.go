package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ues-sigs/guarderia/core/child"
	"github.com/ues-sigs/guarderia/core/user"
)

func Test_childApi_create(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	teacher := createUser(t, "Seño", "carmen", "carmen@test.sv", "", []string{user.RoleTeacher}, true)

	body := marchallObj(t, child.NewChild{
		FullName:         "Sofía Ramírez",
		Age:              3,
		GuardianName:     "Ana Ramírez",
		GuardianPhone:    "7000-0000",
		GuardianRelation: "madre",
	})

	tests := []httpTest{
		{name: "Auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", body: body, token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "required fields", body: []byte("{}"), token: getToken(t, admin), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"full_name":         "this field is required",
				"guardian_name":     "this field is required",
				"guardian_phone":    "this field is required",
				"guardian_relation": "this field is required",
			}),
		},
		{name: "registered", body: body, token: getToken(t, admin), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/children", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var ch child.Child
				if err := json.Unmarshal(rec.Body.Bytes(), &ch); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if !ch.Active {
					t.Error("registered child should be active")
				}
				if !ch.RegisteredBy.Valid || ch.RegisteredBy.String != admin.ID {
					t.Errorf("registered_by = %v; want %v", ch.RegisteredBy, admin.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_childApi_visibility(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	unassigned := createUser(t, "Nadie", "nadie1", "nadie@test.sv", "", nil, true)
	ch1 := createChild(t, "Sofía Ramírez", "madre@test.sv")
	ch2 := createChild(t, "Mateo López", "")
	linkGuardian(t, parent, ch1)

	fetch := func(t *testing.T, token string) []child.Child {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/children", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var children []child.Child
		if err := json.Unmarshal(rec.Body.Bytes(), &children); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return children
	}

	t.Run("admin sees all", func(t *testing.T) {
		if got := len(fetch(t, getToken(t, admin))); got != 2 {
			t.Errorf("children = %d; want 2", got)
		}
	})

	t.Run("parent sees own children only", func(t *testing.T) {
		children := fetch(t, getToken(t, parent))
		if len(children) != 1 {
			t.Fatalf("children = %d; want 1", len(children))
		}
		if children[0].ID != ch1.ID {
			t.Errorf("child = %v; want %v", children[0].ID, ch1.ID)
		}
	})

	t.Run("unassigned principal sees none", func(t *testing.T) {
		if got := len(fetch(t, getToken(t, unassigned))); got != 0 {
			t.Errorf("children = %d; want 0", got)
		}
	})

	t.Run("parent cannot retrieve an unrelated child", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/children/"+ch2.ID, getToken(t, parent))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want 403; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("guardian retrieves own child", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/children/"+ch1.ID, getToken(t, parent))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_childApi_deactivate(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	ch := createChild(t, "Sofía Ramírez", "")

	req, rec := newAuthRequest(http.MethodDelete, "/v1/children/"+ch.ID, getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	var got child.Child
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if got.Active {
		t.Error("child should be inactive after deactivation")
	}

	// deactivated children drop out of the register
	req, rec = newAuthRequest(http.MethodGet, "/v1/attendance", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); body != "[]\n" && body != "[]" {
		t.Errorf("register = %s; want empty", body)
	}
}

func Test_childApi_pickups(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	stranger := createUser(t, "Padre", "padre1", "padre@test.sv", "", []string{user.RoleParent}, true)
	ch := createChild(t, "Sofía Ramírez", "madre@test.sv")
	linkGuardian(t, parent, ch)

	adminToken := getToken(t, admin)

	body := marchallObj(t, child.NewPickupPerson{
		FullName:         "Tía Rosa",
		IdentityDocument: "01234567-8",
		Phone:            "7111-1111",
		Relationship:     "tía",
		AuthorizedFrom:   time.Now(),
		AuthorizedDays:   "L,M,X,J,V",
		Signature:        "aG9sYQ==",
	})

	var created child.PickupPerson
	t.Run("authorize", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/children/"+ch.ID+"/pickups", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if !created.Active {
			t.Error("pickup person should be active")
		}
	})

	t.Run("parents cannot authorize", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/children/"+ch.ID+"/pickups", getToken(t, parent), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want 403", rec.Code)
		}
	})

	t.Run("guardian lists pickups", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/children/"+ch.ID+"/pickups", getToken(t, parent))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var people []child.PickupPerson
		if err := json.Unmarshal(rec.Body.Bytes(), &people); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(people) != 1 {
			t.Errorf("pickups = %d; want 1", len(people))
		}
	})

	t.Run("unrelated parent cannot list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/children/"+ch.ID+"/pickups", getToken(t, stranger))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want 403", rec.Code)
		}
	})

	t.Run("remove", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/pickups/"+created.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %v; want 204; body %s", rec.Code, rec.Body.String())
		}
	})
}
