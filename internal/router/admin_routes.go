package router

import (
	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/handler"
	"github.com/anthera/powerleave/internal/middleware"
)

// RegisterAdmin registers the management surface: request review, the
// usage report, leave type / announcement / closure management and the
// team roster.  Every route requires the admin role; non-admins are
// rejected with 403 before any handler code runs.
func RegisterAdmin(e *echo.Echo, jwtSecret string,
	review *handler.ReviewHandler,
	leave *handler.LeaveHandler,
	team *handler.TeamHandler,
	ann *handler.AnnouncementHandler,
	closure *handler.ClosureHandler,
	settings *handler.SettingsHandler) {

	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("admin"),
	)

	g.PUT("/leaves/requests/:id/review", review.Review)
	g.GET("/leaves/usage", leave.GetUsage)

	g.POST("/leaves/types", leave.CreateType)
	g.PUT("/leaves/types/:id", leave.UpdateType)
	g.DELETE("/leaves/types/:id", leave.DeleteType)

	g.GET("/team", team.List)
	g.PUT("/team/:id/role", team.ToggleRole)
	g.DELETE("/team/:id", team.Remove)

	g.POST("/announcements", ann.Create)
	g.PUT("/announcements/:id", ann.Update)
	g.DELETE("/announcements/:id", ann.Delete)

	g.GET("/closures", closure.List)
	g.POST("/closures", closure.Create)
	g.DELETE("/closures/:id", closure.Delete)
	g.PUT("/closures/exceptions/:id/review", closure.ReviewException)

	g.PUT("/organization", settings.UpdateOrganization)
	g.PUT("/settings/rules", settings.UpdateRules)
}
