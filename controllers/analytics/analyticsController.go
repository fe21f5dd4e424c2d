package controllers

import (
	"context"
	"errors"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	analyticsValidator "lms/validators/analytics"
	"time"

	"github.com/gofiber/fiber/v2"
)

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

// resolveScope resolves the actor's reporting scope and applies an optional
// department narrowing on top of it.
func resolveScope(ctx context.Context, actor *models.User, departmentID uint) ([]uint, error) {
	scope, err := services.NewScopeResolver(database.Database.Db).Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	if departmentID == 0 || len(scope) == 0 {
		return scope, nil
	}

	var narrowed []uint
	err = database.Database.Db.WithContext(ctx).Model(&models.User{}).
		Where("id IN ? AND department_id = ?", scope, departmentID).
		Pluck("id", &narrowed).Error
	if err != nil {
		return nil, err
	}
	return narrowed, nil
}

// TeamProgress reports per-course completion rates and the daily activity
// timeline for the actor's scope.
func TeamProgress(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	query := c.Locals("validatedTeamProgress").(*analyticsValidator.TeamProgressQuery)

	scope, err := resolveScope(c.Context(), user, query.DepartmentID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve team scope!", nil)
	}

	analytics := services.NewAnalytics(database.Database.Db)
	overview, err := analytics.TeamProgressOverview(c.Context(), scope, query.Since, query.Until, query.CourseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute team progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Team progress fetched successfully!", fiber.Map{
		"since":    query.Since.Format("2006-01-02"),
		"until":    query.Until.Format("2006-01-02"),
		"members":  len(scope),
		"overview": overview,
	})
}

// TeamAnalytics composes completion rates, quiz performance, time-spent
// distribution and the top performers for the actor's scope.
func TeamAnalytics(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	period := c.Locals("analyticsPeriodDays").(int)
	departmentID := c.Locals("analyticsDepartmentID").(uint)
	since := time.Now().UTC().AddDate(0, 0, -period)

	scope, err := resolveScope(c.Context(), user, departmentID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve team scope!", nil)
	}

	analytics := services.NewAnalytics(database.Database.Db)

	rates, err := analytics.CompletionRatesByCourse(c.Context(), scope, since)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute completion rates!", nil)
	}

	quiz, err := analytics.QuizPerformance(c.Context(), scope, since)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute quiz performance!", nil)
	}

	buckets, err := analytics.TimeSpentDistribution(c.Context(), scope, since)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute time distribution!", nil)
	}

	performers, err := analytics.TopPerformers(c.Context(), scope, 5)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute top performers!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Team analytics fetched successfully!", fiber.Map{
		"period_days":      period,
		"members":          len(scope),
		"completion_rates": rates,
		"quiz_performance": quiz,
		"time_buckets":     buckets,
		"top_performers":   performers,
	})
}

// MemberDetails returns one user's per-course progress, certificates and
// activity stats. Access is limited to the actor's reporting scope.
func MemberDetails(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	targetID := c.Locals("targetUserID").(uint)

	resolver := services.NewScopeResolver(database.Database.Db)
	if err := resolver.VerifyAccess(c.Context(), user, targetID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		case errors.Is(err, services.ErrForbidden):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
		}
	}

	var target models.User
	database.Database.Db.Where("id = ?", targetID).First(&target)

	db := database.Database.Db
	evaluator := services.NewEvaluator(db)

	// one entry per assigned course, progress rolled up per course
	var assignments []courseModels.CourseAssignment
	db.Where("user_id = ?", targetID).Order("assigned_date desc").Find(&assignments)

	courseList := make([]fiber.Map, 0, len(assignments))
	for _, assignment := range assignments {
		var course courseModels.Course
		db.Select("title").Where("id = ?", assignment.CourseID).First(&course)

		pct, completedLessons, totalLessons, err := evaluator.CompletionPercentage(c.Context(), targetID, assignment.CourseID)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute course progress!", nil)
		}

		courseList = append(courseList, fiber.Map{
			"course_id":             assignment.CourseID,
			"course_title":          course.Title,
			"status":                assignment.Status,
			"mandatory":             assignment.Mandatory,
			"due_date":              assignment.DueDate,
			"completion_percentage": pct,
			"completed_lessons":     completedLessons,
			"total_lessons":         totalLessons,
		})
	}

	var certs []courseModels.Certificate
	db.Where("user_id = ?", targetID).Order("issued_date desc").Find(&certs)

	var totalSeconds int64
	db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ?", targetID).
		Select("COALESCE(SUM(time_spent_seconds), 0)").
		Scan(&totalSeconds)

	analytics := services.NewAnalytics(db)
	streak, err := analytics.ActivityStreak(c.Context(), targetID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute activity streak!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Member details fetched successfully!", fiber.Map{
		"user": fiber.Map{
			"id":            target.ID,
			"name":          target.Name,
			"email":         target.Email,
			"role":          target.Role,
			"department_id": target.DepartmentID,
		},
		"courses":                  courseList,
		"certificates":             certs,
		"total_time_spent_seconds": totalSeconds,
		"activity_streak_days":     streak,
	})
}
