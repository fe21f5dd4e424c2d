package course

import (
	"time"

	"gorm.io/gorm"
)

// Assignment states. Status is denormalized: the evaluator and the overdue
// scheduler keep it consistent with the derived completion percentage.
const (
	AssignmentAssigned   = "assigned"
	AssignmentInProgress = "in_progress"
	AssignmentCompleted  = "completed"
	AssignmentOverdue    = "overdue"
	AssignmentCancelled  = "cancelled"
)

// CourseAssignment links a user to a course they must (or may) complete.
// Created by the assignment workflow, owned jointly by assigner and assignee.
type CourseAssignment struct {
	gorm.Model
	UserID       uint       `json:"user_id" gorm:"uniqueIndex:idx_assignment_user_course;not null"`
	CourseID     uint       `json:"course_id" gorm:"uniqueIndex:idx_assignment_user_course;not null"`
	AssignedBy   uint       `json:"assigned_by"`
	AssignedDate time.Time  `json:"assigned_date"`
	DueDate      *time.Time `json:"due_date"`
	Mandatory    bool       `json:"mandatory" gorm:"default:false"`
	Status       string     `json:"status" gorm:"default:'assigned'"` // assigned, in_progress, completed, overdue, cancelled
	CompletedAt  *time.Time `json:"completed_at"`
}
