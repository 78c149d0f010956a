package middleware

import "github.com/iliyamo/appregistry/internal/apperr"

// Role tiers. Higher values carry more privilege.
const (
	RolePublic        = 0
	RoleAuthenticated = 1
	RoleElevated      = 2
	RoleAdmin         = 3
)

// DefaultRequiredRole is the tier AuthorizeRole callers use when a route
// has no finer table.
const DefaultRequiredRole = RoleElevated

// MethodRoles maps an HTTP method to the minimum role tier allowed to use
// it. Methods missing from the map are not allowed at all.
type MethodRoles map[string]int64

// AuthorizeMethod checks claims against the tier table entry for the
// request method.
func AuthorizeMethod(req Request, claims map[string]any, table MethodRoles) error {
	required, ok := table[req.Method]
	if !ok {
		return apperr.MethodNotAllowed()
	}
	if !sufficient(claims, required) {
		return apperr.Authorization("Forbidden: Insufficient privileges")
	}
	return nil
}

// AuthorizeRole is the single-tier variant of AuthorizeMethod.
func AuthorizeRole(claims map[string]any, required int64) error {
	if !sufficient(claims, required) {
		return apperr.Authorization("Forbidden")
	}
	return nil
}

func sufficient(claims map[string]any, required int64) bool {
	if required <= RolePublic {
		return true
	}
	role, ok := claimsOf(claims).RoleID()
	return ok && role >= required
}
