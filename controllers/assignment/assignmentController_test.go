package controllers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	assignmentRoutes "lms/routers/assignmentRoutes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testAppCounter atomic.Int64

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	config.AppConfig = &config.Config{JWTKey: "test-secret", Port: "0"}

	dsn := fmt.Sprintf("file:assign_test_%d?mode=memory&cache=shared", testAppCounter.Add(1))
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
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	assignmentRoutes.SetupAssignmentRoutes(app)
	return app
}

func seedUserWithToken(t *testing.T, name, role string, companyID, departmentID uint) (*models.User, string) {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s_%d@example.com", name, testAppCounter.Add(1)),
		Role:         role,
		CompanyID:    companyID,
		DepartmentID: departmentID,
	}
	require.NoError(t, database.Database.Db.Create(&user).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return &user, token
}

func postAssignment(t *testing.T, app *fiber.App, token, body string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/admin/assignments", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))
	return resp.StatusCode, payload
}

func TestManagerAssignsWithinDepartment(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUserWithToken(t, "manager", models.RoleManager, 1, 10)
	member, _ := seedUserWithToken(t, "member", models.RoleParticipant, 1, 10)

	course := courseModels.Course{Title: "Code of Conduct", IsPublished: true}
	require.NoError(t, database.Database.Db.Create(&course).Error)

	body := fmt.Sprintf(`{"user_id": %d, "course_id": %d, "mandatory": true}`, member.ID, course.ID)
	code, payload := postAssignment(t, app, token, body)
	require.Equal(t, http.StatusCreated, code)

	data := payload["data"].(map[string]interface{})
	assert.Equal(t, courseModels.AssignmentAssigned, data["status"])
	assert.Equal(t, true, data["mandatory"])

	// Assigning the same course twice conflicts
	code, _ = postAssignment(t, app, token, body)
	assert.Equal(t, http.StatusConflict, code)
}

func TestManagerCannotAssignOutsideDepartment(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUserWithToken(t, "manager", models.RoleManager, 1, 10)
	outsider, _ := seedUserWithToken(t, "outsider", models.RoleParticipant, 1, 20)

	course := courseModels.Course{Title: "Code of Conduct", IsPublished: true}
	require.NoError(t, database.Database.Db.Create(&course).Error)

	body := fmt.Sprintf(`{"user_id": %d, "course_id": %d}`, outsider.ID, course.ID)
	code, _ := postAssignment(t, app, token, body)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestParticipantCannotAssign(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUserWithToken(t, "member", models.RoleParticipant, 1, 10)
	target, _ := seedUserWithToken(t, "target", models.RoleParticipant, 1, 10)

	body := fmt.Sprintf(`{"user_id": %d, "course_id": 1}`, target.ID)
	code, _ := postAssignment(t, app, token, body)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAssignUnpublishedCourseRejected(t *testing.T) {
	app := setupTestApp(t)
	_, token := seedUserWithToken(t, "manager", models.RoleManager, 1, 10)
	member, _ := seedUserWithToken(t, "member", models.RoleParticipant, 1, 10)

	course := courseModels.Course{Title: "Draft Course", IsPublished: false}
	require.NoError(t, database.Database.Db.Create(&course).Error)

	body := fmt.Sprintf(`{"user_id": %d, "course_id": %d}`, member.ID, course.ID)
	code, _ := postAssignment(t, app, token, body)
	assert.Equal(t, http.StatusNotFound, code)
}
