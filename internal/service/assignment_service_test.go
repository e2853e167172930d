package service

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

func newAssignmentFixture(t *testing.T) *assignmentService {
	t.Helper()

	db := newSeededDB(t)
	svc := NewAssignmentService(AssignmentDependencies{
		Assignments: repository.NewAssignmentRepository(db),
		Courses:     repository.NewCourseRepository(db),
		Roster:      repository.NewRosterRepository(db),
		Validator:   validator.New(validator.WithRequiredStructEnabled()),
		Activity:    NewActivityService(repository.NewActivityLogRepository(db), zerolog.Nop()),
	}, zerolog.Nop()).(*assignmentService)
	svc.now = fixedClock("2025-01-07T00:00:00Z")
	return svc
}

func TestAssignmentListOrderedByDueDate(t *testing.T) {
	svc := newAssignmentFixture(t)
	ctx := context.Background()

	all, err := svc.List(ctx, faculty, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)

	ids := []uint{all[0].ID, all[1].ID, all[2].ID, all[3].ID}
	require.Equal(t, []uint{1, 3, 2, 4}, ids)
	require.Equal(t, []string{"urgent", "soon", "normal", "normal"}, []string{all[0].Urgency, all[1].Urgency, all[2].Urgency, all[3].Urgency})
	require.Equal(t, 3, all[1].DaysLeft)

	mine, err := svc.List(ctx, student, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.EqualValues(t, 1, mine[0].CourseID)

	chemistry := uint(3)
	filtered, err := svc.List(ctx, student, &chemistry)
	require.NoError(t, err)
	require.Empty(t, filtered)

	filtered, err = svc.List(ctx, admin, &chemistry)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
}

func TestAssignmentCreate(t *testing.T) {
	svc := newAssignmentFixture(t)
	ctx := context.Background()
	payload := dto.AssignmentCreateRequest{
		CourseID: 2,
		Title:    "Series Convergence",
		DueDate:  "2025-01-09",
		MaxMarks: 20,
	}

	_, err := svc.Create(ctx, student, payload)
	require.ErrorIs(t, err, ErrForbidden)

	created, err := svc.Create(ctx, faculty, payload)
	require.NoError(t, err)
	require.Equal(t, "2025-01-09", created.DueDate)
	require.Equal(t, 2, created.DaysLeft)
	require.Equal(t, "soon", created.Urgency)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Title, fetched.Title)

	payload.CourseID = 99
	_, err = svc.Create(ctx, faculty, payload)
	require.ErrorIs(t, err, ErrCourseNotFound)

	payload.CourseID = 2
	payload.DueDate = "09/01/2025"
	_, err = svc.Create(ctx, faculty, payload)
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))

	payload.DueDate = "2025-01-09"
	payload.MaxMarks = 0
	_, err = svc.Create(ctx, admin, payload)
	require.True(t, errors.As(err, &validationErrs))
}

func TestAssignmentCreateRefreshesCachedDashboards(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := newSeededDB(t)
	dashboards := NewDashboardService(DashboardDependencies{
		Courses:     repository.NewCourseRepository(db),
		Roster:      repository.NewRosterRepository(db),
		Assignments: repository.NewAssignmentRepository(db),
		Submissions: repository.NewSubmissionRepository(db),
	}, client, "eduportal", time.Hour, zerolog.Nop()).(*dashboardService)
	dashboards.now = fixedClock("2025-01-07T00:00:00Z")

	svc := NewAssignmentService(AssignmentDependencies{
		Assignments: repository.NewAssignmentRepository(db),
		Courses:     repository.NewCourseRepository(db),
		Roster:      repository.NewRosterRepository(db),
		Validator:   validator.New(validator.WithRequiredStructEnabled()),
		Dashboards:  dashboards,
	}, zerolog.Nop()).(*assignmentService)
	svc.now = fixedClock("2025-01-07T00:00:00Z")
	ctx := context.Background()

	before, err := dashboards.Dashboard(ctx, student)
	require.NoError(t, err)
	require.Len(t, before.Student.Pending, 1)
	staffBefore, err := dashboards.Dashboard(ctx, faculty)
	require.NoError(t, err)
	require.Len(t, staffBefore.Staff.Assignments, 4)
	require.True(t, mini.Exists("eduportal:dashboard:student:P-1002"))

	_, err = svc.Create(ctx, faculty, dto.AssignmentCreateRequest{
		CourseID: 1,
		Title:    "Projectile Motion",
		DueDate:  "2025-01-12",
		MaxMarks: 10,
	})
	require.NoError(t, err)
	require.False(t, mini.Exists("eduportal:dashboard:student:P-1002"))
	require.False(t, mini.Exists("eduportal:dashboard:staff:faculty:F-01"))

	after, err := dashboards.Dashboard(ctx, student)
	require.NoError(t, err)
	require.Len(t, after.Student.Pending, 2)
	staffAfter, err := dashboards.Dashboard(ctx, faculty)
	require.NoError(t, err)
	require.Len(t, staffAfter.Staff.Assignments, 5)
}

func TestAssignmentGetMissing(t *testing.T) {
	svc := newAssignmentFixture(t)

	_, err := svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestDaysLeftBoundaries(t *testing.T) {
	due, err := models.ParseDueDate("2025-01-10")
	require.NoError(t, err)

	cases := []struct {
		now     string
		days    int
		urgency models.Urgency
	}{
		{"2025-01-09T00:00:00Z", 1, models.UrgencyUrgent},
		{"2025-01-08T12:00:00Z", 2, models.UrgencySoon},
		{"2025-01-07T00:00:00Z", 3, models.UrgencySoon},
		{"2025-01-06T00:00:00Z", 4, models.UrgencyNormal},
		{"2025-01-10T00:00:00Z", 0, models.UrgencyUrgent},
		{"2025-01-11T06:00:00Z", -1, models.UrgencyUrgent},
	}
	for _, tc := range cases {
		days := models.DaysLeft(due, fixedClock(tc.now)())
		require.Equal(t, tc.days, days, tc.now)
		require.Equal(t, tc.urgency, models.ClassifyDaysLeft(days), tc.now)
	}
}
