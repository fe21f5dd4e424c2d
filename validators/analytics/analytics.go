package analyticsValidator

import (
	"lms/middleware"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// TeamProgressQuery is the parsed window/filter set for team progress reports.
type TeamProgressQuery struct {
	Since        time.Time
	Until        time.Time
	CourseID     uint
	DepartmentID uint
}

// TeamProgress validates since/until/course_id/department_id query params.
// Dates accept YYYY-MM-DD; the window defaults to the trailing 7 days.
func TeamProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		query := &TeamProgressQuery{
			Since: now.AddDate(0, 0, -7),
			Until: now,
		}

		if raw := strings.TrimSpace(c.Query("since")); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid 'since' date, expected YYYY-MM-DD!", nil)
			}
			query.Since = parsed
		}
		if raw := strings.TrimSpace(c.Query("until")); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid 'until' date, expected YYYY-MM-DD!", nil)
			}
			query.Until = parsed
		}
		if query.Until.Before(query.Since) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "'until' must not be before 'since'!", nil)
		}

		if raw := strings.TrimSpace(c.Query("course_id")); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
			}
			query.CourseID = uint(id)
		}
		if raw := strings.TrimSpace(c.Query("department_id")); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Department ID!", nil)
			}
			query.DepartmentID = uint(id)
		}

		c.Locals("validatedTeamProgress", query)
		return c.Next()
	}
}

// TeamAnalytics validates the period (trailing days) parameter, default 30.
func TeamAnalytics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := 30
		if raw := strings.TrimSpace(c.Query("period")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 365 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid period, expected 1-365 days!", nil)
			}
			period = parsed
		}

		departmentID := uint(0)
		if raw := strings.TrimSpace(c.Query("department_id")); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Department ID!", nil)
			}
			departmentID = uint(id)
		}

		c.Locals("analyticsPeriodDays", period)
		c.Locals("analyticsDepartmentID", departmentID)
		return c.Next()
	}
}

// MemberDetails validates the target user path parameter.
func MemberDetails() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params("user_id"))
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
		}

		c.Locals("targetUserID", uint(id))
		return c.Next()
	}
}
