package course

import (
	"time"

	"gorm.io/gorm"
)

// Lesson progress states
const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// QuizPassScore is the score at or above which a quiz attempt counts as a pass.
// Whether a failing score blocks advancement is a content-layer decision; the
// engine records the score either way.
const QuizPassScore = 80

// LessonProgress tracks one user's state on one lesson. One row per
// (user_id, lesson_id), created lazily on first start and never deleted.
type LessonProgress struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"uniqueIndex:idx_progress_user_lesson;not null"`
	LessonID         uint       `json:"lesson_id" gorm:"uniqueIndex:idx_progress_user_lesson;not null"`
	CourseID         uint       `json:"course_id" gorm:"index;not null"`
	Status           string     `json:"status" gorm:"default:'not_started'"` // not_started, in_progress, completed
	TimeSpentSeconds int64      `json:"time_spent_seconds" gorm:"default:0"` // monotonically non-decreasing
	QuizScore        *int       `json:"quiz_score"`                          // 0-100, quiz lessons only
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	LastAccessedAt   *time.Time `json:"last_accessed_at"`
}
