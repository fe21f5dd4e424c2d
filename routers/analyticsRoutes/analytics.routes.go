package analyticsRoutes

import (
	controllers "lms/controllers/analytics"
	"lms/middleware"
	validators "lms/validators/analytics"

	"github.com/gofiber/fiber/v2"
)

// SetupAnalyticsRoutes sets up the team reporting routes
func SetupAnalyticsRoutes(app *fiber.App) {
	analyticsGroup := app.Group("/analytics")

	analyticsGroup.Get("/team/progress", middleware.JWTMiddleware, validators.TeamProgress(), controllers.TeamProgress)
	analyticsGroup.Get("/team", middleware.JWTMiddleware, validators.TeamAnalytics(), controllers.TeamAnalytics)
	analyticsGroup.Get("/member/:user_id", middleware.JWTMiddleware, validators.MemberDetails(), controllers.MemberDetails)
}
