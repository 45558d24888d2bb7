package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/handler"
	"github.com/anthera/powerleave/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Besides the health check this covers the leave type list and the
// announcement feed, which the client renders before login completes.
// The response cache (when configured) is mounted here and nowhere
// else: only these public, identical-for-everyone responses are safe
// to serve from a shared cache.
func RegisterRoutes(e *echo.Echo, leave *handler.LeaveHandler, ann *handler.AnnouncementHandler, cache ...echo.MiddlewareFunc) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)

	e.GET("/v1/leaves/types", leave.GetTypes, cache...)
	e.GET("/v1/announcements", ann.List, cache...)
}

// RegisterAuth registers the authentication routes.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token: the presented token is revoked
	// and a new pair issued.
	g.POST("/refresh", a.Refresh)
	// Logout does not require JWT authentication: a client with an
	// expired access token can still invalidate its refresh token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("user", "admin"))
	auth.GET("/me", a.Me)
}
