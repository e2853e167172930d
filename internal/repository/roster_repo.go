package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// RosterRepository exposes course enrolment.
type RosterRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.RosterEntry, error)
	Get(ctx context.Context, courseID uint, studentID string) (models.RosterEntry, error)
	FindStudent(ctx context.Context, studentID string) (models.RosterEntry, error)
}

type rosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository constructs a roster repository.
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.RosterEntry, error) {
	var entries []models.RosterEntry
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *rosterRepository) Get(ctx context.Context, courseID uint, studentID string) (models.RosterEntry, error) {
	var entry models.RosterEntry
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&entry).Error; err != nil {
		return models.RosterEntry{}, err
	}
	return entry, nil
}

// FindStudent returns any roster entry for the student, used to resolve display names.
func (r *rosterRepository) FindStudent(ctx context.Context, studentID string) (models.RosterEntry, error) {
	var entry models.RosterEntry
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("id ASC").
		First(&entry).Error; err != nil {
		return models.RosterEntry{}, err
	}
	return entry, nil
}
