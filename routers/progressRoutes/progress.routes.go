package progressRoutes

import (
	controllers "lms/controllers/progress"
	"lms/middleware"
	validators "lms/validators/progress"

	"github.com/gofiber/fiber/v2"
)

// SetupProgressRoutes sets up lesson progress and certificate routes
func SetupProgressRoutes(app *fiber.App) {
	progressGroup := app.Group("/progress")

	// Lesson lifecycle
	progressGroup.Post("/lesson/:lesson_id/start", middleware.JWTMiddleware, validators.StartLesson(), controllers.StartLesson)
	progressGroup.Post("/lesson/:lesson_id/heartbeat", middleware.JWTMiddleware, validators.Heartbeat(), controllers.Heartbeat)
	progressGroup.Post("/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.CompleteLesson(), controllers.CompleteLesson)

	// Course rollup for the caller
	progressGroup.Get("/course/:course_id", middleware.JWTMiddleware, validators.GetCourseProgress(), controllers.GetCourseProgress)

	// Certificates earned by the caller
	userGroup := app.Group("/user")
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
