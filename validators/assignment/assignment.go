package assignmentValidator

import (
	"lms/middleware"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// AssignCourseRequest is the assignment-workflow intake payload.
type AssignCourseRequest struct {
	UserID    uint       `json:"user_id" validate:"required,gt=0"`
	CourseID  uint       `json:"course_id" validate:"required,gt=0"`
	DueDate   *time.Time `json:"due_date"`
	Mandatory bool       `json:"mandatory"`
}

func AssignCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AssignCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			if verrs, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range verrs {
					errors[strings.ToLower(fe.Field())] = "Invalid value: failed '" + fe.Tag() + "' rule!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		if reqData.DueDate != nil && reqData.DueDate.Before(time.Now()) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Due date must be in the future!", nil)
		}

		c.Locals("validatedAssignment", reqData)
		return c.Next()
	}
}
