package utils

import (
	"lms/database"
	"lms/models"
	"lms/models/course"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// InitializeAssignmentScheduler sets up the overdue/expiry background jobs
func InitializeAssignmentScheduler() {
	log.Println("[ASSIGNMENT-SCHEDULER] Initializing assignment scheduler...")

	c := cron.New()

	// Hourly sweep for assignments past their due date
	c.AddFunc("@hourly", func() {
		log.Println("[ASSIGNMENT-SCHEDULER] Running overdue assignment check...")
		MarkOverdueAssignments()
	})

	// Daily at 2 AM, expire certificates past their validity window
	c.AddFunc("0 2 * * *", func() {
		log.Println("[ASSIGNMENT-SCHEDULER] Running certificate expiry check...")
		ExpireCertificates()
	})

	c.Start()
	log.Println("[ASSIGNMENT-SCHEDULER] Assignment scheduler started")
}

// MarkOverdueAssignments flips assigned/in_progress assignments past their due
// date to overdue and notifies the affected users
func MarkOverdueAssignments() {
	db := database.Database.Db
	now := time.Now()

	var dueAssignments []course.CourseAssignment
	if err := db.
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?",
			[]string{course.AssignmentAssigned, course.AssignmentInProgress}, now).
		Find(&dueAssignments).Error; err != nil {
		log.Printf("[ASSIGNMENT-SCHEDULER] Error fetching due assignments: %v", err)
		return
	}

	if len(dueAssignments) == 0 {
		return
	}
	log.Printf("[ASSIGNMENT-SCHEDULER] Found %d newly overdue assignments", len(dueAssignments))

	for _, assignment := range dueAssignments {
		if err := db.Model(&assignment).Update("status", course.AssignmentOverdue).Error; err != nil {
			log.Printf("[ASSIGNMENT-SCHEDULER] Error marking assignment %d overdue: %v", assignment.ID, err)
			continue
		}

		var user models.User
		if err := db.Where("id = ?", assignment.UserID).First(&user).Error; err != nil {
			log.Printf("[ASSIGNMENT-SCHEDULER] Error fetching user %d: %v", assignment.UserID, err)
			continue
		}

		var c course.Course
		db.Select("title").Where("id = ?", assignment.CourseID).First(&c)

		go SendOverdueEmail(user.Email, user.Name, c.Title, assignment.DueDate)
	}
}

// ExpireCertificates marks active certificates past their expiry date as expired
func ExpireCertificates() {
	db := database.Database.Db
	now := time.Now()

	result := db.Model(&course.Certificate{}).
		Where("status = ? AND expiry_date < ?", course.CertificateActive, now).
		Update("status", course.CertificateExpired)

	if result.Error != nil {
		log.Printf("[ASSIGNMENT-SCHEDULER] Error expiring certificates: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[ASSIGNMENT-SCHEDULER] Expired %d certificates", result.RowsAffected)
	}
}
