package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// GetUserCertificates lists the caller's certificates with course names
func GetUserCertificates(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var certs []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ?", user.ID).Order("issued_date desc").Find(&certs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	certList := make([]fiber.Map, 0, len(certs))
	for _, cert := range certs {
		var course courseModels.Course
		database.Database.Db.Select("title").Where("id = ?", cert.CourseID).First(&course)

		certList = append(certList, fiber.Map{
			"certificate_id": cert.CertificateID,
			"course_id":      cert.CourseID,
			"course_title":   course.Title,
			"issued_date":    cert.IssuedDate,
			"expiry_date":    cert.ExpiryDate,
			"status":         cert.Status,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certList,
	})
}
