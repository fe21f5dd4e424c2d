package services

import (
	"context"
	"lms/models"
	courseModels "lms/models/course"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Analytics computes reporting rollups over a resolved user-ID scope. Every
// operation is read-only, takes no locks, and degrades to zero-valued results
// on an empty scope or window instead of failing.
type Analytics struct {
	db *gorm.DB
}

// NewAnalytics creates an Analytics service bound to the given database handle.
func NewAnalytics(db *gorm.DB) *Analytics {
	return &Analytics{db: db}
}

// CourseCompletionRate is one course's assigned/completed rollup within a scope.
type CourseCompletionRate struct {
	CourseID       uint   `json:"course_id"`
	CourseTitle    string `json:"course_title"`
	AssignedCount  int64  `json:"assigned_count"`
	CompletedCount int64  `json:"completed_count"`
	CompletionRate int    `json:"completion_rate"`
}

// QuizStats summarizes recorded quiz scores within a scope and window.
type QuizStats struct {
	Average  float64 `json:"average"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
	Attempts int64   `json:"attempts"`
}

// TimeBuckets counts users per total-time-spent band. A user lands in exactly
// one bucket.
type TimeBuckets struct {
	Under1Hour  int `json:"under_1h"`
	Hours1To5   int `json:"1h_to_5h"`
	Hours5To10  int `json:"5h_to_10h"`
	Over10Hours int `json:"over_10h"`
}

// Performer is one row of the certificate-count ranking.
type Performer struct {
	UserID           uint   `json:"user_id"`
	Name             string `json:"name"`
	CertificateCount int64  `json:"certificate_count"`
}

// DailyActivity is one day of the team activity timeline.
type DailyActivity struct {
	Date        string `json:"date"` // YYYY-MM-DD
	ActiveUsers int    `json:"active_users"`
}

// TeamProgressOverview composes per-course rates, a daily activity timeline and
// the overall completion rate for a scope.
type TeamProgressOverview struct {
	CompletionRates       []CourseCompletionRate `json:"completion_rates"`
	Timeline              []DailyActivity        `json:"timeline"`
	TotalAssigned         int64                  `json:"total_assigned"`
	TotalCompleted        int64                  `json:"total_completed"`
	OverallCompletionRate int                    `json:"overall_completion_rate"`
}

type courseCount struct {
	CourseID uint
	Total    int64
}

// CompletionRatesByCourse returns assigned/completed counts per course for
// assignments in scope created on/after since. Completed counts certificates
// issued on/after since. Courses without assignments in scope are excluded.
func (a *Analytics) CompletionRatesByCourse(ctx context.Context, scope []uint, since time.Time) ([]CourseCompletionRate, error) {
	if len(scope) == 0 {
		return []CourseCompletionRate{}, nil
	}

	var assigned []courseCount
	err := a.db.WithContext(ctx).Model(&courseModels.CourseAssignment{}).
		Select("course_id, COUNT(*) as total").
		Where("user_id IN ? AND assigned_date >= ? AND status <> ?", scope, since, courseModels.AssignmentCancelled).
		Group("course_id").
		Scan(&assigned).Error
	if err != nil {
		return nil, err
	}
	if len(assigned) == 0 {
		return []CourseCompletionRate{}, nil
	}

	var completed []courseCount
	err = a.db.WithContext(ctx).Model(&courseModels.Certificate{}).
		Select("course_id, COUNT(*) as total").
		Where("user_id IN ? AND issued_date >= ?", scope, since).
		Group("course_id").
		Scan(&completed).Error
	if err != nil {
		return nil, err
	}

	completedByCourse := make(map[uint]int64, len(completed))
	for _, row := range completed {
		completedByCourse[row.CourseID] = row.Total
	}

	rates := make([]CourseCompletionRate, 0, len(assigned))
	for _, row := range assigned {
		var c courseModels.Course
		a.db.WithContext(ctx).Select("title").Where("id = ?", row.CourseID).First(&c)

		done := completedByCourse[row.CourseID]
		rates = append(rates, CourseCompletionRate{
			CourseID:       row.CourseID,
			CourseTitle:    c.Title,
			AssignedCount:  row.Total,
			CompletedCount: done,
			CompletionRate: roundRate(done, row.Total),
		})
	}

	sort.Slice(rates, func(i, j int) bool { return rates[i].CourseID < rates[j].CourseID })
	return rates, nil
}

// QuizPerformance aggregates all recorded quiz scores in scope touched on/after
// since.
func (a *Analytics) QuizPerformance(ctx context.Context, scope []uint, since time.Time) (QuizStats, error) {
	if len(scope) == 0 {
		return QuizStats{}, nil
	}

	row := struct {
		Avg   *float64
		Low   *int
		High  *int
		Total int64
	}{}
	err := a.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
		Select("AVG(quiz_score) as avg, MIN(quiz_score) as low, MAX(quiz_score) as high, COUNT(*) as total").
		Where("user_id IN ? AND quiz_score IS NOT NULL AND last_accessed_at >= ?", scope, since).
		Scan(&row).Error
	if err != nil {
		return QuizStats{}, err
	}

	stats := QuizStats{Attempts: row.Total}
	if row.Avg != nil {
		stats.Average = math.Round(*row.Avg*100) / 100
	}
	if row.Low != nil {
		stats.Min = *row.Low
	}
	if row.High != nil {
		stats.Max = *row.High
	}
	return stats, nil
}

// TimeSpentDistribution sums each user's time spent within the window and
// buckets the users into <1h, 1-5h, 5-10h and >10h bands.
func (a *Analytics) TimeSpentDistribution(ctx context.Context, scope []uint, since time.Time) (TimeBuckets, error) {
	buckets := TimeBuckets{}
	if len(scope) == 0 {
		return buckets, nil
	}

	var totals []struct {
		UserID uint
		Total  int64
	}
	err := a.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
		Select("user_id, SUM(time_spent_seconds) as total").
		Where("user_id IN ? AND last_accessed_at >= ?", scope, since).
		Group("user_id").
		Scan(&totals).Error
	if err != nil {
		return buckets, err
	}

	for _, row := range totals {
		switch {
		case row.Total < 3600:
			buckets.Under1Hour++
		case row.Total < 5*3600:
			buckets.Hours1To5++
		case row.Total < 10*3600:
			buckets.Hours5To10++
		default:
			buckets.Over10Hours++
		}
	}
	return buckets, nil
}

// ActivityStreak counts consecutive calendar days with at least one progress
// touch, walking back from the most recent active day within the trailing 30
// days. A streak only counts when that day is today or yesterday.
func (a *Analytics) ActivityStreak(ctx context.Context, userID uint) (int, error) {
	today := truncateToDay(time.Now().UTC())
	windowStart := today.AddDate(0, 0, -30)

	var stamps []time.Time
	err := a.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND last_accessed_at >= ?", userID, windowStart).
		Pluck("last_accessed_at", &stamps).Error
	if err != nil {
		return 0, err
	}
	if len(stamps) == 0 {
		return 0, nil
	}

	activeDays := make(map[time.Time]bool, len(stamps))
	latest := time.Time{}
	for _, ts := range stamps {
		day := truncateToDay(ts.UTC())
		activeDays[day] = true
		if day.After(latest) {
			latest = day
		}
	}

	yesterday := today.AddDate(0, 0, -1)
	if !latest.Equal(today) && !latest.Equal(yesterday) {
		return 0, nil
	}

	streak := 0
	for day := latest; activeDays[day]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak, nil
}

// TopPerformers ranks users in scope by certificate count descending.
func (a *Analytics) TopPerformers(ctx context.Context, scope []uint, limit int) ([]Performer, error) {
	if len(scope) == 0 || limit <= 0 {
		return []Performer{}, nil
	}

	var rows []struct {
		UserID uint
		Total  int64
	}
	err := a.db.WithContext(ctx).Model(&courseModels.Certificate{}).
		Select("user_id, COUNT(*) as total").
		Where("user_id IN ?", scope).
		Group("user_id").
		Order("total desc, user_id asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	performers := make([]Performer, len(rows))
	for i, row := range rows {
		var u models.User
		a.db.WithContext(ctx).Select("name").Where("id = ?", row.UserID).First(&u)
		performers[i] = Performer{
			UserID:           row.UserID,
			Name:             u.Name,
			CertificateCount: row.Total,
		}
	}
	return performers, nil
}

// TeamProgressOverview composes completion rates, a per-day distinct active
// user timeline over [since, until], and the overall rate across all courses
// in scope. courseFilter (non-zero) narrows the per-course list only, never
// the overall totals.
func (a *Analytics) TeamProgressOverview(ctx context.Context, scope []uint, since, until time.Time, courseFilter uint) (*TeamProgressOverview, error) {
	overview := &TeamProgressOverview{
		CompletionRates: []CourseCompletionRate{},
		Timeline:        []DailyActivity{},
	}
	if len(scope) == 0 {
		return overview, nil
	}

	rates, err := a.CompletionRatesByCourse(ctx, scope, since)
	if err != nil {
		return nil, err
	}
	for _, rate := range rates {
		overview.TotalAssigned += rate.AssignedCount
		overview.TotalCompleted += rate.CompletedCount
		if courseFilter == 0 || rate.CourseID == courseFilter {
			overview.CompletionRates = append(overview.CompletionRates, rate)
		}
	}
	overview.OverallCompletionRate = roundRate(overview.TotalCompleted, overview.TotalAssigned)

	timeline, err := a.activityTimeline(ctx, scope, since, until)
	if err != nil {
		return nil, err
	}
	overview.Timeline = timeline

	return overview, nil
}

// activityTimeline buckets distinct active users per calendar day, filling
// days without activity with zero so the chart axis stays continuous.
func (a *Analytics) activityTimeline(ctx context.Context, scope []uint, since, until time.Time) ([]DailyActivity, error) {
	start := truncateToDay(since.UTC())
	end := truncateToDay(until.UTC())
	if end.Before(start) {
		return []DailyActivity{}, nil
	}

	var rows []struct {
		UserID         uint
		LastAccessedAt time.Time
	}
	err := a.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
		Select("user_id, last_accessed_at").
		Where("user_id IN ? AND last_accessed_at >= ? AND last_accessed_at < ?", scope, start, end.AddDate(0, 0, 1)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	usersByDay := make(map[time.Time]map[uint]bool)
	for _, row := range rows {
		day := truncateToDay(row.LastAccessedAt.UTC())
		if usersByDay[day] == nil {
			usersByDay[day] = make(map[uint]bool)
		}
		usersByDay[day][row.UserID] = true
	}

	var timeline []DailyActivity
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		timeline = append(timeline, DailyActivity{
			Date:        day.Format("2006-01-02"),
			ActiveUsers: len(usersByDay[day]),
		})
	}
	return timeline, nil
}

func roundRate(completed, assigned int64) int {
	if assigned == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(assigned) * 100))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
