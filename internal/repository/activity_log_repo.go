package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// ActivityLogFilter narrows audit trail queries. Zero values match everything.
type ActivityLogFilter struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   *uint
	Since      time.Time
	Limit      int
}

// ActivityLogRepository persists audit trail events.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns the newest entries first.
func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	conditions := map[string]string{
		"actor_id = ?":    filter.ActorID,
		"action = ?":      filter.Action,
		"entity_type = ?": filter.EntityType,
	}
	for clause, value := range conditions {
		if value != "" {
			query = query.Where(clause, value)
		}
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var entries []models.ActivityLog
	if err := query.Order("id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
