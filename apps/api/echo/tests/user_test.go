package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/ues-sigs/guarderia/apps/api/echo"
	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/user"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	createUser(t, "Admin", "admin1", "admin@test.sv", "LaVida3nR0$a!", []string{user.RoleAdmin}, true)
	createUser(t, "N Dog", "ndog01", "ndog@test.sv", "LaVida3nR0$a!", []string{user.RoleParent}, false)

	tests := []httpTest{
		{
			name: "empty body", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required", "password": "this field is required",
			}),
		},
		{
			name: "unknown user", body: marchallObj(t, echoapi.LoginRequest{Username: "lol", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, echoapi.LoginRequest{Username: "admin1", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, echoapi.LoginRequest{Username: "ndog01", Password: "LaVida3nR0$a!"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", body: marchallObj(t, echoapi.LoginRequest{Username: "admin1", Password: "LaVida3nR0$a!"}), wantCode: http.StatusOK},
		{name: "login with email", body: marchallObj(t, echoapi.LoginRequest{Username: "admin@test.sv", Password: "LaVida3nR0$a!"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)

	naughty := createUser(t, "N Dog", "ndog01", "ndog@test.sv", "", []string{user.RoleParent}, false)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   parent.ID,
			Audience:  "Guarderia",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * core.Conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Username:     parent.Username,
		Email:        parent.Email,
		IsParent:     parent.IsParent(),
		Roles:        parent.Roles,
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, parent), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_resetPassword(t *testing.T) {
	app := setup(t)

	createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	tests := []httpTest{
		{
			name: "email required", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
		{name: "unknown email is silently accepted", body: marchallObj(t, user.PasswordResetRequest{Email: "lol@test.sv"}), wantCode: http.StatusOK, wantData: successData},
		{name: "known email", body: marchallObj(t, user.PasswordResetRequest{Email: "madre@test.sv"}), wantCode: http.StatusOK, wantData: successData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	teacher := createUser(t, "Seño", "carmen", "carmen@test.sv", "", []string{user.RoleTeacher}, true)

	adminToken := getToken(t, admin)

	path := func(search string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", path: "/v1/users", token: getToken(t, parent), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Get all", path: "/v1/users", token: adminToken, wantData: marchallList(t, admin, parent, teacher)},
		{name: "search (unknown)", path: path("lol"), token: adminToken, wantData: marchallList(t)},
		{name: "search", path: path("madre"), token: adminToken, wantData: marchallList(t, parent)},
		{name: "role=parent:", path: path("", user.RoleParent), token: adminToken, wantData: marchallList(t, parent)},
		{name: "role=teacher:,admin:", path: path("", user.RoleTeacher, user.RoleAdmin), token: adminToken, wantData: marchallList(t, teacher, admin)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_create(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)

	newUsr := func(uname, email string, roles ...string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            uname,
			Username:        uname,
			Email:           email,
			Password:        "LaVida3nR0$a!",
			PasswordConfirm: "LaVida3nR0$a!",
			Roles:           roles,
		})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, parent), body: newUsr("padre1", "padre@test.sv"), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "create parent", token: getToken(t, admin), body: newUsr("padre1", "padre@test.sv", user.RoleParent), wantCode: http.StatusCreated},
		{name: "create teacher", token: getToken(t, admin), body: newUsr("carmen", "carmen@test.sv", user.RoleTeacher), wantCode: http.StatusCreated},
		{
			name: "cannot grant a role above own", token: getToken(t, admin),
			body:     newUsr("elboss", "boss@test.sv", user.RoleAdminOwner),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "duplicate username", token: getToken(t, admin), body: newUsr("admin1", "other@test.sv", user.RoleParent),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Errorf("json.Unmarshal(): %v", err)
				}
				if usr.ID == "" {
					t.Error("failed! empty user ID")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_detail(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin1", "admin@test.sv", "", []string{user.RoleAdmin}, true)
	parent := createUser(t, "Madre", "madre1", "madre@test.sv", "", []string{user.RoleParent}, true)
	other := createUser(t, "Padre", "padre1", "padre@test.sv", "", []string{user.RoleParent}, true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + parent.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "non-admins cannot view others", path: "/v1/users/" + other.ID, token: getToken(t, parent),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "own detail", path: "/v1/users/" + parent.ID, token: getToken(t, parent), wantCode: http.StatusOK, wantData: marchallObj(t, parent)},
		{name: "admin views any", path: "/v1/users/" + other.ID, token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, other)},
		{
			name: "unknown user", path: "/v1/users/" + "00000000-0000-4000-8000-000000000000", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
