package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// CourseRepository exposes read access to courses.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN roster_entries ON roster_entries.course_id = courses.id").
		Where("roster_entries.student_id = ?", studentID).
		Order("courses.id ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}
