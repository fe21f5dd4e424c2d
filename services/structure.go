package services

import (
	"context"
	"errors"
	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// CourseLessonIDs flattens the course structure into its ordered lesson IDs.
// Callers must re-fetch on every evaluation: the authoring subsystem may add or
// remove lessons at any time and a cached flattening would miscount completion.
func CourseLessonIDs(ctx context.Context, db *gorm.DB, courseID uint) ([]uint, error) {
	var lessons []courseModels.Lesson
	err := db.WithContext(ctx).
		Select("lessons.id").
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.is_deleted = ?", false).
		Where("lessons.course_id = ? AND lessons.is_deleted = ? AND lessons.is_published = ?", courseID, false, true).
		Order("modules.order_index asc, lessons.order_index asc, lessons.id asc").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
	}
	return ids, nil
}

// GetLesson fetches a published lesson or reports ErrNotFound.
func GetLesson(ctx context.Context, db *gorm.DB, lessonID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := db.WithContext(ctx).
		Where("id = ? AND is_deleted = ? AND is_published = ?", lessonID, false, true).
		First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lesson, nil
}
