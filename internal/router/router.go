package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/blood-donation-tracker/internal/handler"
	"github.com/iliyamo/blood-donation-tracker/internal/middleware"
	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

// Guard is the middleware chain protecting role-scoped groups: it verifies
// the access token, resolves the principal from the database and then
// checks its role.
type Guard struct {
	JWTSecret string
	Principal echo.MiddlewareFunc // middleware.LoadPrincipal
}

// For returns the chain admitting only the given roles.
func (g Guard) For(roles ...model.Role) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(g.JWTSecret),
		g.Principal,
		middleware.RequireRole(roles...),
	}
}

// RegisterRoutes registers the liveness and readiness probes.
func RegisterRoutes(e *echo.Echo, db *sql.DB, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db, rdb))
}

// RegisterAuth registers the session endpoints under /v1/auth and the
// protected /v1/me.  limiter guards the credential endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guard, limiter echo.MiddlewareFunc) {
	auth := e.Group("/v1/auth", limiter)
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)
	auth.POST("/refresh", a.Refresh)              // rotates the refresh token
	auth.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	auth.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, g.For(model.RoleAdmin, model.RoleHospital, model.RoleDonor)...)
}

// RegisterPublic registers unauthenticated endpoints.  cache wraps the
// statistics endpoint.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/stats", p.Stats, cache)
}
