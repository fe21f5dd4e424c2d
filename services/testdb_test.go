package services

import (
	"fmt"
	"lms/models"
	courseModels "lms/models/course"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

// newTestDB opens an isolated in-memory database per test. A single connection
// keeps the shared cache alive and serializes concurrent goroutines the way a
// real database's row locks would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Lesson{},
		&courseModels.LessonProgress{},
		&courseModels.CourseAssignment{},
		&courseModels.Certificate{},
	))

	return db
}

// seedCourse creates a published course with one module and n lessons of the
// given content types. Returns the course ID and the lesson IDs in order.
func seedCourse(t *testing.T, db *gorm.DB, contentTypes ...string) (uint, []uint) {
	t.Helper()

	course := courseModels.Course{Title: "Data Privacy Basics", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	module := courseModels.Module{CourseID: course.ID, Title: "Unit 1", OrderIndex: 1}
	require.NoError(t, db.Create(&module).Error)

	lessonIDs := make([]uint, len(contentTypes))
	for i, contentType := range contentTypes {
		lesson := courseModels.Lesson{
			CourseID:    course.ID,
			ModuleID:    module.ID,
			Title:       fmt.Sprintf("Lesson %d", i+1),
			ContentType: contentType,
			OrderIndex:  i + 1,
			IsPublished: true,
		}
		require.NoError(t, db.Create(&lesson).Error)
		lessonIDs[i] = lesson.ID
	}

	return course.ID, lessonIDs
}

func seedUser(t *testing.T, db *gorm.DB, name, role string, companyID, departmentID uint) *models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s_%d@example.com", name, testDBCounter.Add(1)),
		Role:         role,
		CompanyID:    companyID,
		DepartmentID: departmentID,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func intPtr(v int) *int { return &v }
