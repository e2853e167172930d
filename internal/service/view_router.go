package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
)

var allRoles = []models.Role{models.RoleStudent, models.RoleFaculty, models.RoleAdmin}

// viewCapabilities lists the roles allowed to render each known view.
var viewCapabilities = map[string][]models.Role{
	ViewDashboard:   allRoles,
	ViewCourses:     allRoles,
	ViewAssignments: allRoles,
	ViewLibrary:     allRoles,
	ViewProfile:     allRoles,
	ViewWorkbooks:   {models.RoleStudent, models.RoleFaculty},
	ViewStudents:    {models.RoleFaculty, models.RoleAdmin},
	ViewUsers:       {models.RoleAdmin},
	ViewAnalytics:   {models.RoleAdmin},
	ViewSettings:    {models.RoleAdmin},
}

// RouteView decides what the main panel renders. Unknown views fall back to the dashboard;
// known views the role may not open fail with ErrForbidden. Unrecognised roles are treated as
// students, matching ResolveNavigation.
func RouteView(viewID string, role models.Role) (dto.RenderDecision, error) {
	requested := strings.ToLower(strings.TrimSpace(viewID))
	role, ok := models.ParseRole(string(role))
	if !ok {
		role = models.RoleStudent
	}

	allowed, known := viewCapabilities[requested]
	if !known {
		return dto.RenderDecision{
			Outcome:   dto.RenderFallback,
			View:      DefaultView,
			Requested: viewID,
		}, nil
	}

	for _, candidate := range allowed {
		if candidate == role {
			return dto.RenderDecision{
				Outcome:   dto.RenderAllowed,
				View:      requested,
				Requested: viewID,
			}, nil
		}
	}

	return dto.RenderDecision{}, fmt.Errorf("%w: view %q is not available to %s", ErrForbidden, requested, role)
}
