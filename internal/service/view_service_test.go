package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

func newViewFixture(t *testing.T) ViewService {
	t.Helper()

	fx := newLedgerFixture(t)
	db := fx.db
	validate := validator.New(validator.WithRequiredStructEnabled())
	activity := NewActivityService(repository.NewActivityLogRepository(db), zerolog.Nop())

	return NewViewService(ViewDependencies{
		Catalog:     newCatalogService(db),
		Assignments: NewAssignmentService(AssignmentDependencies{
			Assignments: repository.NewAssignmentRepository(db),
			Courses:     repository.NewCourseRepository(db),
			Roster:      repository.NewRosterRepository(db),
			Validator:   validate,
			Activity:    activity,
		}, zerolog.Nop()),
		Submissions: fx.service,
		Dashboard: NewDashboardService(DashboardDependencies{
			Courses:     repository.NewCourseRepository(db),
			Roster:      repository.NewRosterRepository(db),
			Assignments: repository.NewAssignmentRepository(db),
			Submissions: repository.NewSubmissionRepository(db),
		}, nil, "eduportal", 0, zerolog.Nop()),
		Profile:  NewProfileService(repository.NewCourseRepository(db)),
		Activity: activity,
	}, zerolog.Nop())
}

func TestRenderUnknownViewFallsBackToDashboard(t *testing.T) {
	svc := newViewFixture(t)

	response, err := svc.Render(context.Background(), student, "grades")
	require.NoError(t, err)
	require.Equal(t, dto.RenderFallback, response.Decision.Outcome)
	require.Equal(t, ViewDashboard, response.Decision.View)

	dashboard, ok := response.Data.(dto.DashboardResponse)
	require.True(t, ok)
	require.NotNil(t, dashboard.Student)
}

func TestRenderForbiddenView(t *testing.T) {
	svc := newViewFixture(t)

	_, err := svc.Render(context.Background(), student, "settings")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRenderAssignmentsPerRole(t *testing.T) {
	svc := newViewFixture(t)
	ctx := context.Background()

	response, err := svc.Render(ctx, faculty, "assignments")
	require.NoError(t, err)
	reviews, ok := response.Data.([]dto.AssignmentReviewResponse)
	require.True(t, ok)
	require.Len(t, reviews, 4)

	response, err = svc.Render(ctx, student, "assignments")
	require.NoError(t, err)
	items, ok := response.Data.([]dto.StudentAssignmentResponse)
	require.True(t, ok)
	require.Len(t, items, 1)
	require.Nil(t, items[0].Submission)
}

func TestRenderProfileAndPanels(t *testing.T) {
	svc := newViewFixture(t)
	ctx := context.Background()

	response, err := svc.Render(ctx, faculty, "profile")
	require.NoError(t, err)
	profile := response.Data.(dto.ProfileResponse)
	require.Equal(t, "Physics", profile.Details["Department"])
	require.Equal(t, "Associate Professor", profile.Details["Title"])
	require.Equal(t, "Active", profile.Status)

	response, err = svc.Render(ctx, student, "profile")
	require.NoError(t, err)
	profile = response.Data.(dto.ProfileResponse)
	require.Len(t, profile.Courses, 1)

	response, err = svc.Render(ctx, admin, "settings")
	require.NoError(t, err)
	require.Equal(t, "System Settings", response.Data.(dto.PanelResponse).Title)

	response, err = svc.Render(ctx, admin, "analytics")
	require.NoError(t, err)
	analytics := response.Data.(dto.AnalyticsResponse)
	require.Equal(t, "Analytics", analytics.Title)
	require.Empty(t, analytics.RecentActivity)
}
