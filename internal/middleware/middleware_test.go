package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/appregistry/internal/apperr"
	"github.com/iliyamo/appregistry/internal/config"
	"github.com/iliyamo/appregistry/internal/utils"
)

var usersTable = MethodRoles{
	http.MethodGet:    RoleElevated,
	http.MethodPost:   RoleElevated,
	http.MethodPut:    RoleElevated,
	http.MethodDelete: RoleAdmin,
}

func tokenFor(t *testing.T, s *utils.TokenService, role int64) string {
	t.Helper()
	tok, err := s.CreateToken(utils.Claims{"id": 5, "role_id": role, "exp": s.Expiry()})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	return tok
}

func TestAuthenticate(t *testing.T) {
	s := utils.NewTokenService("secret", time.Hour)

	_, err := Authenticate(Request{Method: http.MethodGet}, s)
	if !apperr.Is(err, apperr.KindAuthentication) || err.Error() != "Unauthorized" {
		t.Errorf("missing cookie: got %v", err)
	}

	_, err = Authenticate(Request{Cookies: map[string]string{TokenCookie: "a.b.c"}}, s)
	if !apperr.Is(err, apperr.KindAuthentication) || err.Error() != "Invalid token" {
		t.Errorf("bad token: got %v", err)
	}

	claims, err := Authenticate(Request{Cookies: map[string]string{TokenCookie: tokenFor(t, s, 2)}}, s)
	if err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if id, _ := claims.UserID(); id != 5 {
		t.Errorf("id claim = %d", id)
	}
}

func TestAuthorizeMethodUnknownMethodAlways405(t *testing.T) {
	claimSets := []map[string]any{nil, {}, {"role_id": 3.0}, {"role_id": 100.0}}
	for _, claims := range claimSets {
		err := AuthorizeMethod(Request{Method: http.MethodPatch}, claims, usersTable)
		if !apperr.Is(err, apperr.KindMethodNotAllowed) {
			t.Errorf("claims %v: expected 405, got %v", claims, err)
		}
	}
}

func TestAuthorizeMethodTiers(t *testing.T) {
	cases := []struct {
		method string
		claims map[string]any
		ok     bool
	}{
		{http.MethodGet, map[string]any{"role_id": 2.0}, true},
		{http.MethodGet, map[string]any{"role_id": 1.0}, false},
		{http.MethodDelete, map[string]any{"role_id": 2.0}, false},
		{http.MethodDelete, map[string]any{"role_id": 3.0}, true},
		{http.MethodGet, map[string]any{}, false},
		{http.MethodGet, map[string]any{"role_id": "2"}, false},
	}
	for _, c := range cases {
		err := AuthorizeMethod(Request{Method: c.method}, c.claims, usersTable)
		if c.ok && err != nil {
			t.Errorf("%s %v: unexpected %v", c.method, c.claims, err)
		}
		if !c.ok && !apperr.Is(err, apperr.KindAuthorization) {
			t.Errorf("%s %v: expected 403, got %v", c.method, c.claims, err)
		}
	}

	public := MethodRoles{http.MethodGet: RolePublic}
	if err := AuthorizeMethod(Request{Method: http.MethodGet}, nil, public); err != nil {
		t.Errorf("public method rejected: %v", err)
	}
}

func TestAuthorizeRole(t *testing.T) {
	if err := AuthorizeRole(map[string]any{"role_id": 2.0}, DefaultRequiredRole); err != nil {
		t.Errorf("role 2 rejected: %v", err)
	}
	err := AuthorizeRole(map[string]any{"role_id": 1.0}, DefaultRequiredRole)
	if !apperr.Is(err, apperr.KindAuthorization) || err.Error() != "Forbidden" {
		t.Errorf("role 1: got %v", err)
	}
}

func runGuard(t *testing.T, s *utils.TokenService, table MethodRoles, method, token string) (utils.Claims, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/v1/users", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen utils.Claims
	called := false
	err := Guard(s, table)(func(c echo.Context) error {
		called = true
		seen, _ = ClaimsFrom(c)
		return nil
	})(c)
	return seen, called, err
}

func TestGuard(t *testing.T) {
	s := utils.NewTokenService("secret", time.Hour)

	_, called, err := runGuard(t, s, usersTable, http.MethodPatch, tokenFor(t, s, 3))
	if !apperr.Is(err, apperr.KindMethodNotAllowed) || called {
		t.Errorf("PATCH: err=%v called=%v", err, called)
	}

	_, called, err = runGuard(t, s, usersTable, http.MethodGet, "")
	if !apperr.Is(err, apperr.KindAuthentication) || called {
		t.Errorf("no cookie: err=%v called=%v", err, called)
	}

	_, called, err = runGuard(t, s, usersTable, http.MethodDelete, tokenFor(t, s, 2))
	if !apperr.Is(err, apperr.KindAuthorization) || called {
		t.Errorf("role 2 delete: err=%v called=%v", err, called)
	}

	claims, called, err := runGuard(t, s, usersTable, http.MethodGet, tokenFor(t, s, 2))
	if err != nil || !called {
		t.Fatalf("role 2 get: err=%v called=%v", err, called)
	}
	if role, _ := claims.RoleID(); role != 2 {
		t.Errorf("claims not stored: %v", claims)
	}

	public := MethodRoles{http.MethodGet: RolePublic}
	claims, called, err = runGuard(t, s, public, http.MethodGet, "")
	if err != nil || !called || claims != nil {
		t.Errorf("public get: err=%v called=%v claims=%v", err, called, claims)
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	called := false
	if err := mw(func(echo.Context) error { called = true; return nil })(c); err != nil || !called {
		t.Fatalf("err=%v called=%v", err, called)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/roles", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/roles")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	if got := buildRateKey(cfg, c); got != "rl:ip:10.0.0.1:user:guest:route:GET /v1/roles" {
		t.Errorf("guest key = %q", got)
	}

	setClaims(c, utils.Claims{"id": 9.0})
	cfg.KeyStrategy = "user"
	if got := buildRateKey(cfg, c); got != "rl:user:9" {
		t.Errorf("user key = %q", got)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	if retryAfterSeconds(1) != 1 || retryAfterSeconds(0) != 0 || retryAfterSeconds(-5) != 0 {
		t.Error("unexpected rounding")
	}
}
