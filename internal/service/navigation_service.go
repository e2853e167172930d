package service

import (
	"context"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
)

// View identifiers.
const (
	ViewDashboard   = "dashboard"
	ViewCourses     = "courses"
	ViewAssignments = "assignments"
	ViewWorkbooks   = "workbooks"
	ViewLibrary     = "library"
	ViewStudents    = "students"
	ViewUsers       = "users"
	ViewAnalytics   = "analytics"
	ViewSettings    = "settings"
	ViewProfile     = "profile"
)

// DefaultView is rendered after login, after logout and for unknown views.
const DefaultView = ViewDashboard

type navEntry struct {
	id    string
	label string
	badge bool
}

var navigationByRole = map[models.Role][]navEntry{
	models.RoleStudent: {
		{id: ViewDashboard, label: "Dashboard"},
		{id: ViewCourses, label: "My Courses"},
		{id: ViewAssignments, label: "Assignments", badge: true},
		{id: ViewWorkbooks, label: "Workbooks"},
		{id: ViewLibrary, label: "Reference Library"},
		{id: ViewProfile, label: "Profile"},
	},
	models.RoleFaculty: {
		{id: ViewDashboard, label: "Dashboard"},
		{id: ViewCourses, label: "My Courses"},
		{id: ViewAssignments, label: "Assignment Review"},
		{id: ViewStudents, label: "Student Management"},
		{id: ViewLibrary, label: "Resource Library"},
		{id: ViewProfile, label: "Profile"},
	},
	models.RoleAdmin: {
		{id: ViewDashboard, label: "Dashboard"},
		{id: ViewCourses, label: "Course Management"},
		{id: ViewUsers, label: "User Management"},
		{id: ViewAnalytics, label: "Analytics"},
		{id: ViewSettings, label: "System Settings"},
		{id: ViewLibrary, label: "Content Library"},
		{id: ViewProfile, label: "Profile"},
	},
}

// ResolveNavigation returns the ordered navigation rail for a role. Unrecognised roles get the
// student rail. The badge is attached only when pendingDeadlines is positive.
func ResolveNavigation(role models.Role, pendingDeadlines int) []dto.NavItem {
	entries, ok := navigationByRole[role]
	if !ok {
		entries = navigationByRole[models.RoleStudent]
	}

	items := make([]dto.NavItem, 0, len(entries))
	for _, entry := range entries {
		item := dto.NavItem{ID: entry.id, Label: entry.label}
		if entry.badge && pendingDeadlines > 0 {
			count := pendingDeadlines
			item.BadgeCount = &count
		}
		items = append(items, item)
	}
	return items
}

// DeadlineCounter reports how many assignments a student still owes.
type DeadlineCounter interface {
	PendingDeadlines(ctx context.Context, studentID string) (int, error)
}

// NavigationService builds the navigation rail for an identity.
type NavigationService interface {
	Navigation(ctx context.Context, identity models.Identity) (dto.NavigationResponse, error)
}

type navigationService struct {
	deadlines DeadlineCounter
}

// NewNavigationService constructs the navigation service.
func NewNavigationService(deadlines DeadlineCounter) NavigationService {
	return &navigationService{deadlines: deadlines}
}

func (s *navigationService) Navigation(ctx context.Context, identity models.Identity) (dto.NavigationResponse, error) {
	role := identity.Role
	if _, ok := navigationByRole[role]; !ok {
		role = models.RoleStudent
	}

	pending := 0
	if role == models.RoleStudent && s.deadlines != nil {
		count, err := s.deadlines.PendingDeadlines(ctx, identity.ID)
		if err != nil {
			return dto.NavigationResponse{}, err
		}
		pending = count
	}

	return dto.NavigationResponse{
		Role:             string(role),
		Items:            ResolveNavigation(role, pending),
		PendingDeadlines: pending,
	}, nil
}
