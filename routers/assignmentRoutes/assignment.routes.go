package assignmentRoutes

import (
	controllers "lms/controllers/assignment"
	"lms/middleware"
	validators "lms/validators/assignment"

	"github.com/gofiber/fiber/v2"
)

// SetupAssignmentRoutes sets up the admin assignment-workflow routes
func SetupAssignmentRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin")

	adminGroup.Post("/assignments", middleware.JWTMiddleware, validators.AssignCourse(), controllers.AssignCourse)
}
