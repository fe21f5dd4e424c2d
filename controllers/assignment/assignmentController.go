package controllers

import (
	"errors"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
	assignmentValidator "lms/validators/assignment"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
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

// AssignCourse assigns a course to a user. Admins may assign within their
// company, managers within their department.
func AssignCourse(c *fiber.Ctx) error {
	actor, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	if actor.Role != models.RoleSuperAdmin && actor.Role != models.RoleAdmin && actor.Role != models.RoleManager {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to assign courses!", nil)
	}

	reqData := c.Locals("validatedAssignment").(*assignmentValidator.AssignCourseRequest)
	db := database.Database.Db

	var target models.User
	if err := db.Where("id = ? AND is_deleted = ?", reqData.UserID, false).First(&target).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	switch actor.Role {
	case models.RoleAdmin:
		if target.CompanyID != actor.CompanyID {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User is outside your company!", nil)
		}
	case models.RoleManager:
		if target.DepartmentID != actor.DepartmentID {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User is outside your department!", nil)
		}
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ? AND is_published = ?", reqData.CourseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	assignment := courseModels.CourseAssignment{
		UserID:       reqData.UserID,
		CourseID:     reqData.CourseID,
		AssignedBy:   actor.ID,
		AssignedDate: time.Now(),
		DueDate:      reqData.DueDate,
		Mandatory:    reqData.Mandatory,
		Status:       courseModels.AssignmentAssigned,
	}

	if err := db.Create(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course is already assigned to this user!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to assign course!", nil)
	}

	go utils.SendAssignmentEmail(target.Email, target.Name, course.Title, assignment.DueDate)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course assigned successfully!", fiber.Map{
		"assignment_id": assignment.ID,
		"user_id":       assignment.UserID,
		"course_id":     assignment.CourseID,
		"due_date":      assignment.DueDate,
		"mandatory":     assignment.Mandatory,
		"status":        assignment.Status,
	})
}
