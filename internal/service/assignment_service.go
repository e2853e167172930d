package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

// AssignmentService is the assignment registry.
type AssignmentService interface {
	List(ctx context.Context, identity models.Identity, courseID *uint) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor models.Identity, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo       repository.AssignmentRepository
	courses    repository.CourseRepository
	roster     repository.RosterRepository
	validator  *validator.Validate
	activity   ActivityRecorder
	dashboards DashboardInvalidator
	logger     zerolog.Logger
	now        func() time.Time
}

// AssignmentDependencies wires the registry. Activity and Dashboards are optional.
type AssignmentDependencies struct {
	Assignments repository.AssignmentRepository
	Courses     repository.CourseRepository
	Roster      repository.RosterRepository
	Validator   *validator.Validate
	Activity    ActivityRecorder
	Dashboards  DashboardInvalidator
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(deps AssignmentDependencies, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:       deps.Assignments,
		courses:    deps.Courses,
		roster:     deps.Roster,
		validator:  deps.Validator,
		activity:   deps.Activity,
		dashboards: deps.Dashboards,
		logger:     logger.With().Str("component", "assignment_service").Logger(),
		now:        time.Now,
	}
}

// List orders assignments by due date. Students only see assignments of their enrolled courses.
func (s *assignmentService) List(ctx context.Context, identity models.Identity, courseID *uint) ([]dto.AssignmentResponse, error) {
	filter := repository.AssignmentFilter{}

	if identity.Role == models.RoleStudent {
		courses, err := s.courses.ListByStudent(ctx, identity.ID)
		if err != nil {
			return nil, err
		}
		filter.CourseIDs = make([]uint, 0, len(courses))
		for _, course := range courses {
			if courseID == nil || course.ID == *courseID {
				filter.CourseIDs = append(filter.CourseIDs, course.ID)
			}
		}
	} else if courseID != nil {
		filter.CourseIDs = []uint{*courseID}
	}

	assignments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments, s.now()), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: %d", ErrAssignmentNotFound, id)
		}

		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Create(ctx context.Context, actor models.Identity, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if !actor.Role.IsStaff() {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: only faculty or admin may create assignments", ErrForbidden)
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := models.ParseDueDate(payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: invalid due date: %v", ErrValidation, err)
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: %d", ErrCourseNotFound, payload.CourseID)
		}
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		CourseID:    payload.CourseID,
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		DueDate:     dueDate,
		MaxMarks:    payload.MaxMarks,
		CreatedBy:   actor.ID,
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.invalidateDashboards(ctx, assignment.CourseID)

	if s.activity != nil {
		id := assignment.ID
		if err := s.activity.Record(ctx, ActivityEntry{
			Actor:      actor,
			Action:     "assignment.created",
			EntityType: "assignment",
			EntityID:   &id,
			Metadata:   map[string]interface{}{"course_id": assignment.CourseID, "title": assignment.Title},
		}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record activity")
		}
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Str("created_by", actor.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

// invalidateDashboards drops the cached dashboards of the course roster and of every staff member.
func (s *assignmentService) invalidateDashboards(ctx context.Context, courseID uint) {
	if s.dashboards == nil {
		return
	}

	var students []string
	if s.roster != nil {
		entries, err := s.roster.ListByCourse(ctx, courseID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("failed to load roster for dashboard invalidation")
		}
		for _, entry := range entries {
			students = append(students, entry.StudentID)
		}
	}
	s.dashboards.Invalidate(ctx, students...)
}
