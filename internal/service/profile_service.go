package service

import (
	"context"
	"strings"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

// ProfileService renders the profile view.
type ProfileService interface {
	Profile(ctx context.Context, identity models.Identity) (dto.ProfileResponse, error)
}

type profileService struct {
	courses repository.CourseRepository
}

// NewProfileService constructs the profile service.
func NewProfileService(courses repository.CourseRepository) ProfileService {
	return &profileService{courses: courses}
}

func (s *profileService) Profile(ctx context.Context, identity models.Identity) (dto.ProfileResponse, error) {
	response := dto.ProfileResponse{
		Identity: dto.IdentityResponse{
			ID:   identity.ID,
			Name: identity.Name,
			Role: string(identity.Role),
		},
		Status: "Active",
		Details: map[string]string{
			"Role": titleCase(string(identity.Role)),
		},
	}

	switch identity.Role {
	case models.RoleFaculty:
		response.Details["Faculty ID"] = identity.ID
		response.Details["Department"] = "Physics"
		response.Details["Title"] = "Associate Professor"
	case models.RoleAdmin:
		response.Details["Admin ID"] = identity.ID
		response.Details["Department"] = "IT Administration"
		response.Details["Access Level"] = "System Administrator"
	default:
		response.Details["University ID"] = identity.ID
		courses, err := s.courses.ListByStudent(ctx, identity.ID)
		if err != nil {
			return dto.ProfileResponse{}, err
		}
		response.Courses = dto.NewCourseResponseSlice(courses)
	}

	return response, nil
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
