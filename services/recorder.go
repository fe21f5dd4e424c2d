package services

import (
	"context"
	"errors"
	courseModels "lms/models/course"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Recorder applies lesson lifecycle events (start, heartbeat, complete) to the
// progress store. All mutations are single conditional UPDATEs so concurrent
// sessions (multiple tabs, retried requests) can never lose updates or regress
// a completed lesson.
type Recorder struct {
	db        *gorm.DB
	evaluator *Evaluator
}

// NewRecorder creates a Recorder bound to the given database handle.
func NewRecorder(db *gorm.DB, evaluator *Evaluator) *Recorder {
	return &Recorder{db: db, evaluator: evaluator}
}

// CompletionOutcome is what CompleteLesson reports back to the caller.
type CompletionOutcome struct {
	Progress          *courseModels.LessonProgress `json:"progress"`
	CoursePercentage  int                          `json:"course_completion_percentage"`
	CertificateIssued bool                         `json:"certificate_issued"`
	QuizPassed        *bool                        `json:"quiz_passed,omitempty"`
}

// StartLesson lazily creates the progress record for (user, lesson) and
// promotes not_started rows to in_progress. Already-started and completed
// lessons only get their last_accessed_at refreshed; a completed lesson is
// never regressed.
func (r *Recorder) StartLesson(ctx context.Context, userID, lessonID uint) (*courseModels.LessonProgress, error) {
	lesson, err := GetLesson(ctx, r.db, lessonID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	row := courseModels.LessonProgress{
		UserID:         userID,
		LessonID:       lessonID,
		CourseID:       lesson.CourseID,
		Status:         courseModels.ProgressInProgress,
		StartedAt:      &now,
		LastAccessedAt: &now,
	}

	// Insert-if-absent: a second tab racing the first one leaves the winner's
	// row untouched and falls through to the promotion/touch updates below.
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}

	// Promote a pre-seeded not_started row (no-op after a fresh insert)
	err = r.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ? AND status = ?", userID, lessonID, courseModels.ProgressNotStarted).
		Updates(map[string]interface{}{
			"status":     courseModels.ProgressInProgress,
			"started_at": gorm.Expr("COALESCE(started_at, ?)", now),
		}).Error
	if err != nil {
		return nil, err
	}

	if err := r.touchLastAccessed(ctx, userID, lessonID, now); err != nil {
		return nil, err
	}

	return r.getProgress(ctx, userID, lessonID)
}

// Heartbeat adds deltaSeconds to the time spent on a started lesson and
// refreshes last_accessed_at. The increment happens inside the store, not as a
// read-modify-write, so concurrent heartbeats always sum up. Returns the new
// running total.
func (r *Recorder) Heartbeat(ctx context.Context, userID, lessonID uint, deltaSeconds int64) (int64, error) {
	if deltaSeconds < 0 {
		return 0, errors.New("heartbeat delta must not be negative")
	}

	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ? AND status <> ?", userID, lessonID, courseModels.ProgressNotStarted).
		Updates(map[string]interface{}{
			"time_spent_seconds": gorm.Expr("time_spent_seconds + ?", deltaSeconds),
			"last_accessed_at":   maxTimestampExpr("last_accessed_at", now),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotStarted
	}

	progress, err := r.getProgress(ctx, userID, lessonID)
	if err != nil {
		return 0, err
	}
	return progress.TimeSpentSeconds, nil
}

// CompleteLesson marks a started lesson completed and triggers one evaluator
// pass per actual transition. Repeat calls are no-ops that keep the original
// completed_at. Quiz lessons must carry a score in 0-100; only the latest
// submitted score is retained.
func (r *Recorder) CompleteLesson(ctx context.Context, userID, lessonID uint, quizScore *int) (*CompletionOutcome, error) {
	lesson, err := GetLesson(ctx, r.db, lessonID)
	if err != nil {
		return nil, err
	}

	isQuiz := lesson.ContentType == courseModels.ContentQuiz
	if isQuiz && quizScore == nil {
		return nil, ErrInvalidScore
	}
	if quizScore != nil && (*quizScore < 0 || *quizScore > 100) {
		return nil, ErrInvalidScore
	}

	now := time.Now().UTC()

	// The status guard makes this transition fire at most once, no matter how
	// many concurrent or retried complete calls arrive.
	res := r.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ? AND status <> ?", userID, lessonID, courseModels.ProgressCompleted).
		Updates(map[string]interface{}{
			"status":           courseModels.ProgressCompleted,
			"completed_at":     now,
			"started_at":       gorm.Expr("COALESCE(started_at, ?)", now),
			"last_accessed_at": maxTimestampExpr("last_accessed_at", now),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	transitioned := res.RowsAffected > 0

	if !transitioned {
		// Either the lesson was never started, or it is already completed.
		if _, err := r.getProgress(ctx, userID, lessonID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotStarted
			}
			return nil, err
		}
	}

	// Latest quiz score wins, also across retries of an already-completed quiz
	if isQuiz {
		err = r.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
			Where("user_id = ? AND lesson_id = ?", userID, lessonID).
			Updates(map[string]interface{}{
				"quiz_score":       *quizScore,
				"last_accessed_at": maxTimestampExpr("last_accessed_at", now),
			}).Error
		if err != nil {
			return nil, err
		}
	}

	outcome := &CompletionOutcome{}
	if transitioned {
		pct, issued, err := r.evaluator.Evaluate(ctx, userID, lesson.CourseID)
		if err != nil {
			return nil, err
		}
		outcome.CoursePercentage = pct
		outcome.CertificateIssued = issued
	} else {
		pct, _, _, err := r.evaluator.CompletionPercentage(ctx, userID, lesson.CourseID)
		if err != nil {
			return nil, err
		}
		outcome.CoursePercentage = pct
	}

	if isQuiz {
		passed := *quizScore >= courseModels.QuizPassScore
		outcome.QuizPassed = &passed
	}

	progress, err := r.getProgress(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	outcome.Progress = progress

	return outcome, nil
}

func (r *Recorder) touchLastAccessed(ctx context.Context, userID, lessonID uint, now time.Time) error {
	return r.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Update("last_accessed_at", maxTimestampExpr("last_accessed_at", now)).Error
}

func (r *Recorder) getProgress(ctx context.Context, userID, lessonID uint) (*courseModels.LessonProgress, error) {
	var progress courseModels.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// maxTimestampExpr builds a set-to-max update for a timestamp column so
// concurrent writers can only move it forward.
func maxTimestampExpr(column string, now time.Time) clause.Expr {
	return gorm.Expr("CASE WHEN "+column+" IS NULL OR "+column+" < ? THEN ? ELSE "+column+" END", now, now)
}
