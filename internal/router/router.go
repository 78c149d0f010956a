package router // package router wires middleware and the /v1 resources onto echo

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/appregistry/internal/handler"
	"github.com/iliyamo/appregistry/internal/middleware"
	"github.com/iliyamo/appregistry/internal/utils"
)

// Minimum role per method for each resource. A method absent from a table
// answers 405.
var (
	UserRoles = middleware.MethodRoles{
		http.MethodGet:    middleware.RoleElevated,
		http.MethodPost:   middleware.RoleElevated,
		http.MethodPut:    middleware.RoleElevated,
		http.MethodDelete: middleware.RoleAdmin,
	}
	RoleRoles = middleware.MethodRoles{
		http.MethodGet:    middleware.RoleElevated,
		http.MethodPost:   middleware.RoleElevated,
		http.MethodPut:    middleware.RoleElevated,
		http.MethodDelete: middleware.RoleAdmin,
	}
	ApplicationRoles = middleware.MethodRoles{
		http.MethodGet:    middleware.RolePublic,
		http.MethodPost:   middleware.RoleElevated,
		http.MethodPut:    middleware.RoleElevated,
		http.MethodDelete: middleware.RoleAdmin,
	}
	AuthRoles = middleware.MethodRoles{
		http.MethodGet:    middleware.RoleAuthenticated,
		http.MethodPost:   middleware.RolePublic,
		http.MethodPut:    middleware.RoleAuthenticated,
		http.MethodDelete: middleware.RolePublic,
	}
	HealthRoles = middleware.MethodRoles{
		http.MethodGet: middleware.RolePublic,
	}
)

// Handlers groups the resource handlers mounted under /v1.
type Handlers struct {
	Users        *handler.UserHandler
	Roles        *handler.RoleHandler
	Applications *handler.ApplicationHandler
	Auth         *handler.AuthHandler
}

// New returns an echo instance with the error envelope, trailing-slash
// removal, panic recovery, request ids and CORS installed.
func New(dev bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(dev)

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	return e
}

// RegisterRoutes mounts every /v1 resource. Each route is guarded by its
// role table and then rate limited, so the limiter sees the caller id.
func RegisterRoutes(e *echo.Echo, h Handlers, tokens *utils.TokenService, limit echo.MiddlewareFunc) {
	if limit == nil {
		limit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	v1 := e.Group("/v1")
	mount := func(path string, serve echo.HandlerFunc, table middleware.MethodRoles) {
		v1.Any(path, serve, middleware.Guard(tokens, table), limit)
	}

	mount("/health", handler.Health, HealthRoles)
	mount("/users", h.Users.Serve, UserRoles)
	mount("/roles", h.Roles.Serve, RoleRoles)
	mount("/applications", h.Applications.Serve, ApplicationRoles)
	mount("/auth", h.Auth.Serve, AuthRoles)
}
