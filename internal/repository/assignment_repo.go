package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	CourseIDs []uint
}

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})
	if filter.CourseIDs != nil {
		if len(filter.CourseIDs) == 0 {
			return []models.Assignment{}, nil
		}
		query = query.Where("course_id IN ?", filter.CourseIDs)
	}

	var assignments []models.Assignment
	if err := query.Order("due_date ASC").Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}
