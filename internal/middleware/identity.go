package middleware

// identity.go holds the helpers that move verified claims between the
// guard, the rate limiter and the handlers.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/appregistry/internal/utils"
)

const claimsKey = "claims"

func setClaims(c echo.Context, claims utils.Claims) { c.Set(claimsKey, claims) }

// ClaimsFrom returns the claims Guard stored for this request. The bool is
// false on public routes.
func ClaimsFrom(c echo.Context) (utils.Claims, bool) {
	claims, ok := c.Get(claimsKey).(utils.Claims)
	return claims, ok && claims != nil
}

// CallerID is the id claim of the authenticated caller, or 0.
func CallerID(c echo.Context) int64 {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return 0
	}
	id, _ := claims.UserID()
	return id
}

// CallerRole is the role_id claim of the authenticated caller, or 0.
func CallerRole(c echo.Context) int64 {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return RolePublic
	}
	role, _ := claims.RoleID()
	return role
}

func claimsOf(m map[string]any) utils.Claims { return utils.Claims(m) }

// userID is the rate-limit identity: the caller id, or "guest" when the
// request carries no verified claims.
func userID(c echo.Context) string {
	if id := CallerID(c); id > 0 {
		return strconv.FormatInt(id, 10)
	}
	return "guest"
}
