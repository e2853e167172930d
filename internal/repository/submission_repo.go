package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// SubmissionRepository stores at most one submission per assignment and student.
type SubmissionRepository interface {
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	Get(ctx context.Context, assignmentID uint, studentID string) (models.Submission, error)
	Upsert(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// ListByAssignment returns submissions in insertion order.
func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) Get(ctx context.Context, assignmentID uint, studentID string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// Upsert inserts the submission or replaces the content of the existing row for the same
// assignment and student, keeping its id.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"student_name", "submitted_on", "submitted_by", "artifact_ref", "text_note",
			"grade", "feedback", "graded_by", "graded_at", "updated_at",
		}),
	}).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
