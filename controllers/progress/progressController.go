package controllers

import (
	"errors"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"lms/utils"
	progressValidator "lms/validators/progress"

	"github.com/gofiber/fiber/v2"
)

func recorder() *services.Recorder {
	db := database.Database.Db
	return services.NewRecorder(db, services.NewEvaluator(db))
}

// currentUser loads the authenticated user set by the JWT middleware.
func currentUser(c *fiber.Ctx) (*models.User, bool) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, false
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// respondServiceError maps the service error taxonomy onto the JSON envelope.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Resource not found!", nil)
	case errors.Is(err, services.ErrNotStarted):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Lesson not started yet!", nil)
	case errors.Is(err, services.ErrInvalidScore):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz score missing or outside 0-100!", nil)
	case errors.Is(err, services.ErrForbidden):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}
}

// StartLesson creates or resumes the progress record for a lesson
func StartLesson(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(uint)

	progress, err := recorder().StartLesson(c.Context(), user.ID, lessonID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson started!", fiber.Map{
		"status":             progress.Status,
		"course_id":          progress.CourseID,
		"started_at":         progress.StartedAt,
		"time_spent_seconds": progress.TimeSpentSeconds,
	})
}

// Heartbeat adds a viewing-time delta to a started lesson
func Heartbeat(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(uint)
	reqData := c.Locals("validatedHeartbeat").(*progressValidator.HeartbeatRequest)

	total, err := recorder().Heartbeat(c.Context(), user.ID, lessonID, reqData.DeltaSeconds)
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Heartbeat recorded!", fiber.Map{
		"total_time_spent_seconds": total,
	})
}

// CompleteLesson marks a lesson completed and reports the resulting course
// completion; fires certificate notifications on a genuine first issue.
func CompleteLesson(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(uint)
	reqData := c.Locals("validatedCompletion").(*progressValidator.CompleteLessonRequest)

	outcome, err := recorder().CompleteLesson(c.Context(), user.ID, lessonID, reqData.QuizScore)
	if err != nil {
		return respondServiceError(c, err)
	}

	if outcome.CertificateIssued {
		notifyCertificateIssued(user, outcome.Progress.CourseID)
	}

	response := fiber.Map{
		"status":                       outcome.Progress.Status,
		"course_completion_percentage": outcome.CoursePercentage,
		"certificate_issued":           outcome.CertificateIssued,
	}
	if outcome.QuizPassed != nil {
		response["quiz_passed"] = *outcome.QuizPassed
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed!", response)
}

// GetCourseProgress returns the caller's own rollup for one course
func GetCourseProgress(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	evaluator := services.NewEvaluator(database.Database.Db)
	pct, completed, total, err := evaluator.CompletionPercentage(c.Context(), user.ID, courseID)
	if err != nil {
		return respondServiceError(c, err)
	}

	var rows []courseModels.LessonProgress
	database.Database.Db.Where("user_id = ? AND course_id = ?", user.ID, courseID).Find(&rows)

	var totalSeconds int64
	for _, row := range rows {
		totalSeconds += row.TimeSpentSeconds
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"course_id":             courseID,
		"course_title":          course.Title,
		"completion_percentage": pct,
		"completed_lessons":     completed,
		"total_lessons":         total,
		"time_spent_seconds":    totalSeconds,
		"lessons":               rows,
	})
}

// notifyCertificateIssued fires the email and HR webhook side effects for a
// freshly issued certificate.
func notifyCertificateIssued(user *models.User, courseID uint) {
	var cert courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&cert).Error; err != nil {
		return
	}
	var course courseModels.Course
	database.Database.Db.Select("title").Where("id = ?", courseID).First(&course)

	go utils.SendCertificateEmail(user.Email, user.Name, course.Title, cert.CertificateID)
	go utils.SendCertificateWebhook(user.ID, courseID, cert.CertificateID, cert.IssuedDate)
}
