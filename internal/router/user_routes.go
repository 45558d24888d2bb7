package router

import (
	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/handler"
	"github.com/anthera/powerleave/internal/middleware"
)

// RegisterUser registers the endpoints available to every signed-in
// employee: own balances and requests, the dashboard, the month
// calendar and the inbox.  Admins pass the same gate; role-specific
// widening (e.g. the request list) happens inside the handlers.
func RegisterUser(e *echo.Echo, jwtSecret string,
	leave *handler.LeaveHandler,
	stats *handler.StatsHandler,
	cal *handler.CalendarHandler,
	msg *handler.MessageHandler,
	closure *handler.ClosureHandler,
	settings *handler.SettingsHandler) {

	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("user", "admin"),
	)

	g.GET("/leaves/balance", leave.GetBalance)
	g.POST("/leaves/requests", leave.CreateRequest)
	g.GET("/leaves/requests", leave.GetRequests)
	g.GET("/leaves/stats", stats.GetStats)

	g.GET("/calendar/monthly", cal.Monthly)
	g.GET("/calendar/closures", cal.MonthClosures)

	// Working through a closure: anyone may ask, the list is scoped to
	// the caller inside the handler (admins see everyone's).
	g.POST("/closures/:id/exceptions", closure.RequestException)
	g.GET("/closures/exceptions", closure.ListExceptions)

	g.GET("/organization", settings.GetOrganization)
	g.GET("/settings/rules", settings.GetRules)

	g.GET("/messages", msg.List)
	g.POST("/messages", msg.Send)
	g.PUT("/messages/:id/read", msg.MarkRead)
}
