package services

import (
	"context"
	courseModels "lms/models/course"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartLessonCreatesInProgressRow(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentVideo)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	progress, err := recorder.StartLesson(context.Background(), user.ID, lessons[0])
	require.NoError(t, err)

	assert.Equal(t, courseModels.ProgressInProgress, progress.Status)
	assert.NotNil(t, progress.StartedAt)
	assert.NotNil(t, progress.LastAccessedAt)
	assert.Nil(t, progress.CompletedAt)
}

func TestStartLessonUnknownLesson(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	_, err := recorder.StartLesson(context.Background(), user.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartLessonDoesNotRegressCompleted(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentVideo, courseModels.ContentText)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	ctx := context.Background()

	_, err := recorder.StartLesson(ctx, user.ID, lessons[0])
	require.NoError(t, err)
	outcome, err := recorder.CompleteLesson(ctx, user.ID, lessons[0], nil)
	require.NoError(t, err)
	firstCompletedAt := outcome.Progress.CompletedAt
	require.NotNil(t, firstCompletedAt)

	// Re-opening a completed lesson must not reset its state
	progress, err := recorder.StartLesson(ctx, user.ID, lessons[0])
	require.NoError(t, err)
	assert.Equal(t, courseModels.ProgressCompleted, progress.Status)
	assert.Equal(t, firstCompletedAt.Unix(), progress.CompletedAt.Unix())
}

func TestHeartbeatRequiresStart(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentVideo)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	_, err := recorder.Heartbeat(context.Background(), user.ID, lessons[0], 60)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestHeartbeatAccumulates(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentVideo)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	ctx := context.Background()

	_, err := recorder.StartLesson(ctx, user.ID, lessons[0])
	require.NoError(t, err)

	total, err := recorder.Heartbeat(ctx, user.ID, lessons[0], 30)
	require.NoError(t, err)
	assert.Equal(t, int64(30), total)

	total, err = recorder.Heartbeat(ctx, user.ID, lessons[0], 45)
	require.NoError(t, err)
	assert.Equal(t, int64(75), total)
}

func TestConcurrentHeartbeatsAllCount(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentVideo)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	ctx := context.Background()

	_, err := recorder.StartLesson(ctx, user.ID, lessons[0])
	require.NoError(t, err)

	// Two browser tabs reporting at once: every delta must land
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := recorder.Heartbeat(ctx, user.ID, lessons[0], 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var progress courseModels.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", user.ID, lessons[0]).First(&progress).Error)
	assert.Equal(t, int64(100), progress.TimeSpentSeconds)
}

func TestCompleteLessonIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentVideo, courseModels.ContentText)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	ctx := context.Background()

	_, err := recorder.StartLesson(ctx, user.ID, lessons[0])
	require.NoError(t, err)

	first, err := recorder.CompleteLesson(ctx, user.ID, lessons[0], nil)
	require.NoError(t, err)
	assert.Equal(t, 50, first.CoursePercentage)

	second, err := recorder.CompleteLesson(ctx, user.ID, lessons[0], nil)
	require.NoError(t, err)
	assert.Equal(t, 50, second.CoursePercentage)
	assert.Equal(t, first.Progress.CompletedAt.Unix(), second.Progress.CompletedAt.Unix())
}

func TestCompleteLessonWithoutStart(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentVideo)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	_, err := recorder.CompleteLesson(context.Background(), user.ID, lessons[0], nil)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestCompleteQuizRequiresScore(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentQuiz)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	ctx := context.Background()

	_, err := recorder.StartLesson(ctx, user.ID, lessons[0])
	require.NoError(t, err)

	_, err = recorder.CompleteLesson(ctx, user.ID, lessons[0], nil)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = recorder.CompleteLesson(ctx, user.ID, lessons[0], intPtr(101))
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = recorder.CompleteLesson(ctx, user.ID, lessons[0], intPtr(-1))
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestQuizPassThreshold(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentQuiz, courseModels.ContentQuiz)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	ctx := context.Background()

	_, err := recorder.StartLesson(ctx, user.ID, lessons[0])
	require.NoError(t, err)
	outcome, err := recorder.CompleteLesson(ctx, user.ID, lessons[0], intPtr(79))
	require.NoError(t, err)
	require.NotNil(t, outcome.QuizPassed)
	assert.False(t, *outcome.QuizPassed)

	_, err = recorder.StartLesson(ctx, user.ID, lessons[1])
	require.NoError(t, err)
	outcome, err = recorder.CompleteLesson(ctx, user.ID, lessons[1], intPtr(80))
	require.NoError(t, err)
	require.NotNil(t, outcome.QuizPassed)
	assert.True(t, *outcome.QuizPassed)
}

func TestQuizRetakeKeepsLatestScore(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentQuiz)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	ctx := context.Background()

	_, err := recorder.StartLesson(ctx, user.ID, lessons[0])
	require.NoError(t, err)

	_, err = recorder.CompleteLesson(ctx, user.ID, lessons[0], intPtr(65))
	require.NoError(t, err)
	outcome, err := recorder.CompleteLesson(ctx, user.ID, lessons[0], intPtr(92))
	require.NoError(t, err)

	require.NotNil(t, outcome.Progress.QuizScore)
	assert.Equal(t, 92, *outcome.Progress.QuizScore)
	require.NotNil(t, outcome.QuizPassed)
	assert.True(t, *outcome.QuizPassed)
}

func TestNonQuizLessonHasNoQuizVerdict(t *testing.T) {
	db := newTestDB(t)
	_, lessons := seedCourse(t, db, courseModels.ContentVideo)
	user := seedUser(t, db, "alice", "participant", 1, 1)

	recorder := NewRecorder(db, NewEvaluator(db))
	ctx := context.Background()

	_, err := recorder.StartLesson(ctx, user.ID, lessons[0])
	require.NoError(t, err)

	// Video lessons do not carry a quiz verdict even when a score is sent
	outcome, err := recorder.CompleteLesson(ctx, user.ID, lessons[0], intPtr(50))
	require.NoError(t, err)
	assert.Nil(t, outcome.QuizPassed)
}
