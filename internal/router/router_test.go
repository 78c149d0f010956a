package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/appregistry/internal/database"
	"github.com/iliyamo/appregistry/internal/handler"
	"github.com/iliyamo/appregistry/internal/middleware"
	"github.com/iliyamo/appregistry/internal/repository"
	"github.com/iliyamo/appregistry/internal/service"
	"github.com/iliyamo/appregistry/internal/utils"
)

type testServer struct {
	e      *echo.Echo
	db     *database.DB
	tokens *utils.TokenService
	users  *repository.UserRepo
	roles  *repository.RoleRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newServer(t, false)
}

func newServer(t *testing.T, dev bool) *testServer {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("schema: %v", err)
	}

	tokens := utils.NewTokenService("test-secret", time.Hour)
	users := repository.NewUserRepo(db, 4)
	roles := repository.NewRoleRepo(db)
	pub := service.Nop{}

	e := New(dev)
	RegisterRoutes(e, Handlers{
		Users:        handler.NewUserHandler(users, pub),
		Roles:        handler.NewRoleHandler(roles, pub),
		Applications: handler.NewApplicationHandler(repository.NewApplicationRepo(db), pub),
		Auth:         handler.NewAuthHandler(users, tokens, false),
	}, tokens, nil)
	return &testServer{e: e, db: db, tokens: tokens, users: users, roles: roles}
}

func (s *testServer) tokenFor(t *testing.T, role int64) string {
	t.Helper()
	tok, err := s.tokens.CreateToken(utils.Claims{"id": 1, "username": "caller", "role_id": role, "exp": s.tokens.Expiry()})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	return tok
}

func (s *testServer) do(method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestCreateRoleTwice(t *testing.T) {
	s := newTestServer(t)
	tok := s.tokenFor(t, 2)

	rec := s.do(http.MethodPost, "/v1/roles", `{"name":"tester"}`, tok)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first POST: %d %s", rec.Code, rec.Body)
	}
	if env := decode(t, rec); env.Message != "Role created successfully" {
		t.Errorf("message = %q", env.Message)
	}
	list, err := s.roles.List(context.Background())
	if err != nil || len(list) != 1 || list[0].Name != "tester" {
		t.Fatalf("role row missing: %v %v", list, err)
	}

	rec = s.do(http.MethodPost, "/v1/roles", `{"name":"tester"}`, tok)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second POST: %d %s", rec.Code, rec.Body)
	}
	if env := decode(t, rec); env.Message != "Role already exists" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestListUsersHidesPassword(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for _, name := range []string{"dana", "eli"} {
		if _, err := s.users.Create(ctx, repository.NewUser{Username: name, Email: name + "@example.com", Password: "pw"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec := s.do(http.MethodGet, "/v1/users", "", s.tokenFor(t, 2))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET: %d %s", rec.Code, rec.Body)
	}
	var users []map[string]any
	if err := json.Unmarshal(decode(t, rec).Data, &users); err != nil {
		t.Fatalf("data: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if _, ok := u["password"]; ok {
			t.Errorf("password leaked in %v", u)
		}
	}

	rec = s.do(http.MethodGet, "/v1/users?id=abc", "", s.tokenFor(t, 2))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: %d", rec.Code)
	}
	rec = s.do(http.MethodGet, "/v1/users?id=99", "", s.tokenFor(t, 2))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing id: %d", rec.Code)
	}
}

func TestDeleteMissingApplication(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodDelete, "/v1/applications", `{"id":999}`, s.tokenFor(t, 3))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("DELETE: %d %s", rec.Code, rec.Body)
	}
	env := decode(t, rec)
	if env.Message != "Application not found" || string(env.Data) != "null" {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	s := newTestServer(t)
	tok := s.tokenFor(t, 2)

	rec := s.do(http.MethodPost, "/v1/applications",
		`{"name":"viewer","version":"2.0","type":"cli","download_url":"https://example.com/v"}`, tok)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST: %d %s", rec.Code, rec.Body)
	}
	var app map[string]any
	_ = json.Unmarshal(decode(t, rec).Data, &app)
	if app["created_by"] != 1.0 {
		t.Errorf("created_by = %v", app["created_by"])
	}

	// listing is public
	rec = s.do(http.MethodGet, "/v1/applications", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("public GET: %d", rec.Code)
	}

	rec = s.do(http.MethodDelete, "/v1/applications", `{"id":1}`, tok)
	if rec.Code != http.StatusForbidden {
		t.Errorf("role 2 DELETE: %d", rec.Code)
	}
}

func TestGuardResponses(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPatch, "/v1/users", `{}`, s.tokenFor(t, 3))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH: %d", rec.Code)
	}
	rec = s.do(http.MethodGet, "/v1/users", "", "")
	if rec.Code != http.StatusUnauthorized || decode(t, rec).Message != "Unauthorized" {
		t.Errorf("no cookie: %d %s", rec.Code, rec.Body)
	}
	rec = s.do(http.MethodGet, "/v1/users", "", "not.a.token")
	if rec.Code != http.StatusUnauthorized || decode(t, rec).Message != "Invalid token" {
		t.Errorf("bad cookie: %d %s", rec.Code, rec.Body)
	}
	rec = s.do(http.MethodGet, "/v1/users", "", s.tokenFor(t, 1))
	if rec.Code != http.StatusForbidden {
		t.Errorf("role 1: %d", rec.Code)
	}
	rec = s.do(http.MethodGet, "/v1/roles/", "", s.tokenFor(t, 2))
	if rec.Code != http.StatusOK {
		t.Errorf("trailing slash: %d", rec.Code)
	}
}

func TestCannotGrantHigherRole(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/v1/users",
		`{"username":"fay","email":"fay@example.com","password":"pw","role_id":3}`, s.tokenFor(t, 2))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("grant above own: %d %s", rec.Code, rec.Body)
	}
	rec = s.do(http.MethodPost, "/v1/users",
		`{"username":"fay","email":"fay@example.com","password":"pw","role_id":2}`, s.tokenFor(t, 2))
	if rec.Code != http.StatusCreated {
		t.Fatalf("grant own role: %d %s", rec.Code, rec.Body)
	}
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.TokenCookie {
			return ck
		}
	}
	return nil
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.users.EnsureAdmin(context.Background(), "administrator"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	rec := s.do(http.MethodPost, "/v1/auth", `{"username":"admin","password":"wrong"}`, "")
	if rec.Code != http.StatusUnauthorized || decode(t, rec).Message != "Invalid username or password" {
		t.Fatalf("wrong password: %d %s", rec.Code, rec.Body)
	}
	rec = s.do(http.MethodPost, "/v1/auth", `{"username":"admin"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password: %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/v1/auth", `{"username":"admin","password":"administrator"}`, "")
	if rec.Code != http.StatusOK || decode(t, rec).Message != "Login successful" {
		t.Fatalf("login: %d %s", rec.Code, rec.Body)
	}
	ck := tokenCookie(rec)
	if ck == nil || !ck.HttpOnly || ck.Path != "/" || ck.MaxAge != 3600 {
		t.Fatalf("unexpected cookie %+v", ck)
	}

	rec = s.do(http.MethodGet, "/v1/auth", "", ck.Value)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: %d %s", rec.Code, rec.Body)
	}
	var claims map[string]any
	_ = json.Unmarshal(decode(t, rec).Data, &claims)
	if claims["role_id"] != 3.0 || claims["username"] != "admin" || claims["exp"] == nil {
		t.Errorf("unexpected claims %v", claims)
	}
	if _, ok := claims["password"]; ok {
		t.Error("password in claims")
	}

	rec = s.do(http.MethodPut, "/v1/auth", "", ck.Value)
	if rec.Code != http.StatusOK || tokenCookie(rec) == nil {
		t.Fatalf("refresh: %d %s", rec.Code, rec.Body)
	}
	if !s.tokens.VerifyToken(tokenCookie(rec).Value) {
		t.Error("refreshed cookie does not verify")
	}

	rec = s.do(http.MethodDelete, "/v1/auth", "", "")
	if rec.Code != http.StatusOK || decode(t, rec).Message != "Logout successful" {
		t.Fatalf("logout: %d %s", rec.Code, rec.Body)
	}
	if out := tokenCookie(rec); out == nil || out.MaxAge >= 0 {
		t.Errorf("logout cookie not expired: %+v", out)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/v1/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"message":"OK","data":null}` {
		t.Errorf("body = %s", got)
	}
	if rec := s.do(http.MethodPost, "/v1/health", `{}`, ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST health: %d", rec.Code)
	}
}

func TestServerErrorDetailFollowsMode(t *testing.T) {
	for _, dev := range []bool{true, false} {
		s := newServer(t, dev)
		tok := s.tokenFor(t, 2)
		_ = s.db.Close()

		rec := s.do(http.MethodGet, "/v1/roles", "", tok)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("dev=%v: status = %d", dev, rec.Code)
		}
		env := decode(t, rec)
		if dev {
			if env.Message != "An error occurred" {
				t.Errorf("dev message = %q", env.Message)
			}
			if !strings.Contains(string(env.Data), "database is closed") {
				t.Errorf("dev data = %s", env.Data)
			}
			continue
		}
		if env.Message != "Internal server error" {
			t.Errorf("prod message = %q", env.Message)
		}
		if string(env.Data) != "null" {
			t.Errorf("prod data = %s", env.Data)
		}
	}
}
