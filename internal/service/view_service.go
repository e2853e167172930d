package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

var adminPanels = map[string]dto.PanelResponse{
	ViewUsers: {
		Title:       "User Management",
		Description: "Manage student and faculty accounts, permissions, and access levels.",
	},
	ViewAnalytics: {
		Title:       "Analytics",
		Description: "View system-wide statistics, usage reports, and performance metrics.",
	},
	ViewSettings: {
		Title:       "System Settings",
		Description: "Configure system settings, manage integrations, and customize the platform.",
	},
}

// ViewService routes a view request and assembles the payload of the routed view.
type ViewService interface {
	Render(ctx context.Context, identity models.Identity, viewID string) (dto.ViewResponse, error)
}

// ViewDependencies groups the services that back each view.
type ViewDependencies struct {
	Catalog     CatalogService
	Assignments AssignmentService
	Submissions SubmissionService
	Dashboard   DashboardService
	Profile     ProfileService
	Activity    ActivityService
}

type viewService struct {
	deps   ViewDependencies
	logger zerolog.Logger
}

// NewViewService constructs the view renderer.
func NewViewService(deps ViewDependencies, logger zerolog.Logger) ViewService {
	return &viewService{
		deps:   deps,
		logger: logger.With().Str("component", "view_service").Logger(),
	}
}

func (s *viewService) Render(ctx context.Context, identity models.Identity, viewID string) (dto.ViewResponse, error) {
	decision, err := RouteView(viewID, identity.Role)
	if err != nil {
		s.logger.Debug().Str("view", viewID).Str("role", string(identity.Role)).Msg("view denied")
		return dto.ViewResponse{}, err
	}

	data, err := s.payload(ctx, identity, decision.View)
	if err != nil {
		return dto.ViewResponse{}, err
	}

	return dto.ViewResponse{Decision: decision, Data: data}, nil
}

func (s *viewService) payload(ctx context.Context, identity models.Identity, view string) (interface{}, error) {
	switch view {
	case ViewDashboard:
		return s.deps.Dashboard.Dashboard(ctx, identity)
	case ViewCourses:
		return s.deps.Catalog.ListCourses(ctx, identity)
	case ViewAssignments:
		return s.assignments(ctx, identity)
	case ViewLibrary:
		return s.deps.Catalog.ListBooks(ctx, dto.BookFilter{})
	case ViewWorkbooks:
		return s.deps.Catalog.Workbooks(ctx, identity, nil)
	case ViewStudents:
		return s.students(ctx, identity)
	case ViewProfile:
		return s.deps.Profile.Profile(ctx, identity)
	case ViewAnalytics:
		entries, err := s.deps.Activity.List(ctx, repository.ActivityLogFilter{Limit: 20})
		if err != nil {
			return nil, err
		}
		return dto.AnalyticsResponse{PanelResponse: adminPanels[ViewAnalytics], RecentActivity: entries}, nil
	default:
		return adminPanels[view], nil
	}
}

func (s *viewService) assignments(ctx context.Context, identity models.Identity) (interface{}, error) {
	assignments, err := s.deps.Assignments.List(ctx, identity, nil)
	if err != nil {
		return nil, err
	}

	if identity.Role.IsStaff() {
		reviews := make([]dto.AssignmentReviewResponse, 0, len(assignments))
		for _, assignment := range assignments {
			review, err := s.deps.Submissions.Review(ctx, assignment.ID)
			if err != nil {
				return nil, err
			}
			reviews = append(reviews, review)
		}
		return reviews, nil
	}

	items := make([]dto.StudentAssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		submission, err := s.deps.Submissions.ForStudent(ctx, assignment.ID, identity.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, dto.StudentAssignmentResponse{Assignment: assignment, Submission: submission})
	}
	return items, nil
}

func (s *viewService) students(ctx context.Context, identity models.Identity) ([]dto.RosterResponse, error) {
	courses, err := s.deps.Catalog.ListCourses(ctx, identity)
	if err != nil {
		return nil, err
	}

	rosters := make([]dto.RosterResponse, 0, len(courses))
	for _, course := range courses {
		roster, err := s.deps.Catalog.Roster(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		rosters = append(rosters, roster)
	}
	return rosters, nil
}
