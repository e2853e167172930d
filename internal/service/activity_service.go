package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// Metadata keys whose values never reach the audit table.
var redactedMetadataKeys = []string{"password", "token", "secret", "captcha"}

// ActivityEntry is one auditable staff action.
type ActivityEntry struct {
	Actor      models.Identity
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder writes audit entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityService records and lists audit entries.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the audit trail service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) error {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	entityType := strings.ToLower(strings.TrimSpace(entry.EntityType))
	if action == "" || entityType == "" {
		return fmt.Errorf("%w: activity needs an action and an entity type", ErrValidation)
	}

	actorRole := string(entry.Actor.Role)
	if actorRole == "" {
		actorRole = "system"
	}

	model := models.ActivityLog{
		ActorID:    entry.Actor.ID,
		ActorRole:  actorRole,
		Action:     action,
		EntityType: entityType,
		EntityID:   entry.EntityID,
		Metadata:   redactMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist activity log")
		return err
	}
	return nil
}

// List clamps the page size to [1, 200], defaulting to 50.
func (s *activityService) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultActivityLimit
	case filter.Limit > maxActivityLimit:
		filter.Limit = maxActivityLimit
	}
	return s.repo.List(ctx, filter)
}

func redactMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(metadata))
	for key, value := range metadata {
		out[key] = value
		lower := strings.ToLower(key)
		for _, secret := range redactedMetadataKeys {
			if strings.Contains(lower, secret) {
				out[key] = "***"
				break
			}
		}
	}
	return out
}
