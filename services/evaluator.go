package services

import (
	"context"
	"errors"
	courseModels "lms/models/course"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Evaluator derives course completion from the progress store, keeps the
// denormalized assignment status consistent, and issues certificates when a
// course reaches 100%.
type Evaluator struct {
	db *gorm.DB
}

// NewEvaluator creates an Evaluator bound to the given database handle.
func NewEvaluator(db *gorm.DB) *Evaluator {
	return &Evaluator{db: db}
}

// CompletionPercentage recomputes completion for (user, course) from a fresh
// course structure snapshot. Returns percentage, completed count and total
// lesson count. An empty course is 0%, never 100%.
func (e *Evaluator) CompletionPercentage(ctx context.Context, userID, courseID uint) (int, int, int, error) {
	lessonIDs, err := CourseLessonIDs(ctx, e.db, courseID)
	if err != nil {
		return 0, 0, 0, err
	}
	if len(lessonIDs) == 0 {
		return 0, 0, 0, nil
	}

	var completed int64
	err = e.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND lesson_id IN ? AND status = ?", userID, lessonIDs, courseModels.ProgressCompleted).
		Count(&completed).Error
	if err != nil {
		return 0, 0, 0, err
	}

	pct := int(math.Round(float64(completed) / float64(len(lessonIDs)) * 100))
	return pct, int(completed), len(lessonIDs), nil
}

// Evaluate runs one completion pass for (user, course): recompute the
// percentage, roll the assignment status forward, and hand off to the
// certificate issuer at 100%. Returns the percentage and whether a certificate
// was newly issued by this pass.
func (e *Evaluator) Evaluate(ctx context.Context, userID, courseID uint) (int, bool, error) {
	pct, completed, total, err := e.CompletionPercentage(ctx, userID, courseID)
	if err != nil {
		return 0, false, err
	}

	now := time.Now().UTC()
	if err := e.updateAssignmentStatus(ctx, userID, courseID, pct, completed, now); err != nil {
		return 0, false, err
	}

	issued := false
	if pct == 100 && total > 0 {
		completedAt := e.latestCompletionTime(ctx, userID, courseID, now)
		_, created, err := e.Issue(ctx, userID, courseID, completedAt)
		if err != nil {
			return 0, false, err
		}
		issued = created
	}

	return pct, issued, nil
}

// Issue creates the certificate for (user, course) if none exists. Issuance is
// exactly-once: concurrent passes that both observe 100% race on the composite
// unique key, and the loser reads back the winner's certificate. Returns the
// certificate and whether this call created it.
func (e *Evaluator) Issue(ctx context.Context, userID, courseID uint, completedAt time.Time) (*courseModels.Certificate, bool, error) {
	var existing courseModels.Certificate
	err := e.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	cert := courseModels.Certificate{
		UserID:        userID,
		CourseID:      courseID,
		CertificateID: uuid.NewString(),
		IssuedDate:    completedAt,
		ExpiryDate:    completedAt.AddDate(0, 0, courseModels.CertificateValidityDays),
		Status:        courseModels.CertificateActive,
	}

	if err := e.db.WithContext(ctx).Create(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race: another completion event issued first
			err = e.db.WithContext(ctx).
				Where("user_id = ? AND course_id = ?", userID, courseID).
				First(&existing).Error
			if err != nil {
				return nil, false, err
			}
			return &existing, false, nil
		}
		return nil, false, err
	}

	return &cert, true, nil
}

// updateAssignmentStatus keeps the advisory assignment status in line with the
// derived percentage. Cancelled assignments are left alone; unstarted ones stay
// "assigned".
func (e *Evaluator) updateAssignmentStatus(ctx context.Context, userID, courseID uint, pct, completed int, now time.Time) error {
	var assignment courseModels.CourseAssignment
	err := e.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // progress without an assignment is legal (voluntary training)
		}
		return err
	}
	if assignment.Status == courseModels.AssignmentCancelled {
		return nil
	}

	newStatus := ""
	switch {
	case pct == 100:
		newStatus = courseModels.AssignmentCompleted
	case assignment.DueDate != nil && assignment.DueDate.Before(now):
		newStatus = courseModels.AssignmentOverdue
	case completed > 0:
		newStatus = courseModels.AssignmentInProgress
	}
	if newStatus == "" || newStatus == assignment.Status {
		return nil
	}

	updates := map[string]interface{}{"status": newStatus}
	if newStatus == courseModels.AssignmentCompleted && assignment.CompletedAt == nil {
		updates["completed_at"] = now
	}

	return e.db.WithContext(ctx).Model(&courseModels.CourseAssignment{}).
		Where("id = ?", assignment.ID).
		Updates(updates).Error
}

// latestCompletionTime returns the max completed_at among the user's lessons in
// the course, which becomes the certificate's issue date.
func (e *Evaluator) latestCompletionTime(ctx context.Context, userID, courseID uint, fallback time.Time) time.Time {
	var latest courseModels.LessonProgress
	err := e.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, courseModels.ProgressCompleted).
		Order("completed_at desc").
		First(&latest).Error
	if err != nil || latest.CompletedAt == nil {
		return fallback
	}
	return *latest.CompletedAt
}
