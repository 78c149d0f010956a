package middleware // middleware gates each request by token and role tier

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/appregistry/internal/apperr"
	"github.com/iliyamo/appregistry/internal/utils"
)

// TokenCookie is the cookie the login handler stores the token in.
const TokenCookie = "token"

// Request is the part of an HTTP request the auth checks look at.
type Request struct {
	Method  string
	Header  http.Header
	Cookies map[string]string
}

// RequestFromEcho captures method, headers and cookies of the current
// request.
func RequestFromEcho(c echo.Context) Request {
	r := c.Request()
	cookies := make(map[string]string)
	for _, ck := range r.Cookies() {
		// first cookie of a name wins, like net/http's Request.Cookie
		if _, seen := cookies[ck.Name]; !seen {
			cookies[ck.Name] = ck.Value
		}
	}
	return Request{Method: r.Method, Header: r.Header, Cookies: cookies}
}

// Authenticate verifies the token cookie and returns its claims.
func Authenticate(req Request, tokens *utils.TokenService) (utils.Claims, error) {
	raw, ok := req.Cookies[TokenCookie]
	if !ok || raw == "" {
		return nil, apperr.Authentication("Unauthorized")
	}
	if !tokens.VerifyToken(raw) {
		return nil, apperr.Authentication("Invalid token")
	}
	claims, ok := tokens.GetPayload(raw)
	if !ok {
		return nil, apperr.Authentication("Invalid token")
	}
	return claims, nil
}

// Guard enforces table on every request of a route: unlisted methods get
// 405 before anything else, role-0 methods skip authentication, and the
// rest must carry a valid token whose role_id reaches the method's tier.
// Verified claims are available to handlers through ClaimsFrom.
func Guard(tokens *utils.TokenService, table MethodRoles) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := RequestFromEcho(c)
			required, ok := table[req.Method]
			if !ok {
				return apperr.MethodNotAllowed()
			}
			if required == 0 {
				return next(c)
			}
			claims, err := Authenticate(req, tokens)
			if err != nil {
				return err
			}
			if err := AuthorizeMethod(req, claims, table); err != nil {
				return err
			}
			setClaims(c, claims)
			return next(c)
		}
	}
}
