package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

// CatalogService exposes courses, rosters, books and workbook materials.
type CatalogService interface {
	ListCourses(ctx context.Context, identity models.Identity) ([]dto.CourseResponse, error)
	GetCourse(ctx context.Context, id uint) (dto.CourseResponse, error)
	Roster(ctx context.Context, courseID uint) (dto.RosterResponse, error)
	ListBooks(ctx context.Context, filter dto.BookFilter) (dto.LibraryResponse, error)
	ListMaterials(ctx context.Context, courseID uint) ([]models.Material, error)
	Workbooks(ctx context.Context, identity models.Identity, courseID *uint) (dto.WorkbooksResponse, error)
}

type catalogService struct {
	courses   repository.CourseRepository
	roster    repository.RosterRepository
	library   repository.LibraryRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(courses repository.CourseRepository, roster repository.RosterRepository, library repository.LibraryRepository, validate *validator.Validate, logger zerolog.Logger) CatalogService {
	return &catalogService{
		courses:   courses,
		roster:    roster,
		library:   library,
		validator: validate,
		logger:    logger.With().Str("component", "catalog_service").Logger(),
	}
}

// ListCourses returns the enrolled courses for students and every course for staff.
func (s *catalogService) ListCourses(ctx context.Context, identity models.Identity) ([]dto.CourseResponse, error) {
	var (
		courses []models.Course
		err     error
	)
	if identity.Role == models.RoleStudent {
		courses, err = s.courses.ListByStudent(ctx, identity.ID)
	} else {
		courses, err = s.courses.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *catalogService) GetCourse(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.loadCourse(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *catalogService) Roster(ctx context.Context, courseID uint) (dto.RosterResponse, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return dto.RosterResponse{}, err
	}

	entries, err := s.roster.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.RosterResponse{}, err
	}

	return dto.RosterResponse{
		Course:   dto.NewCourseResponse(course),
		Students: dto.NewRosterEntryResponseSlice(entries),
	}, nil
}

// ListBooks splits matching books into course textbooks and general references.
func (s *catalogService) ListBooks(ctx context.Context, filter dto.BookFilter) (dto.LibraryResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.LibraryResponse{}, err
	}

	books, err := s.library.ListBooks(ctx, repository.BookFilter{
		Kind:     filter.Kind,
		CourseID: filter.CourseID,
		Search:   filter.Search,
	})
	if err != nil {
		return dto.LibraryResponse{}, err
	}

	response := dto.LibraryResponse{
		CourseBooks:    []models.Book{},
		ReferenceBooks: []models.Book{},
	}
	for _, book := range books {
		if book.Kind == models.BookKindTextbook {
			response.CourseBooks = append(response.CourseBooks, book)
			continue
		}
		response.ReferenceBooks = append(response.ReferenceBooks, book)
	}
	return response, nil
}

func (s *catalogService) ListMaterials(ctx context.Context, courseID uint) ([]models.Material, error) {
	if _, err := s.loadCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.library.ListMaterials(ctx, courseID)
}

// Workbooks selects the requested course, or the first visible course, and lists its materials.
func (s *catalogService) Workbooks(ctx context.Context, identity models.Identity, courseID *uint) (dto.WorkbooksResponse, error) {
	courses, err := s.ListCourses(ctx, identity)
	if err != nil {
		return dto.WorkbooksResponse{}, err
	}

	response := dto.WorkbooksResponse{Courses: courses, Materials: []models.Material{}}
	if len(courses) == 0 {
		return response, nil
	}

	selected := courses[0]
	if courseID != nil {
		found := false
		for _, course := range courses {
			if course.ID == *courseID {
				selected = course
				found = true
				break
			}
		}
		if !found {
			return dto.WorkbooksResponse{}, fmt.Errorf("%w: %d", ErrCourseNotFound, *courseID)
		}
	}

	materials, err := s.library.ListMaterials(ctx, selected.ID)
	if err != nil {
		return dto.WorkbooksResponse{}, err
	}

	response.Selected = &selected
	response.Materials = materials
	return response, nil
}

func (s *catalogService) loadCourse(ctx context.Context, id uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, fmt.Errorf("%w: %d", ErrCourseNotFound, id)
		}
		return models.Course{}, err
	}
	return course, nil
}
