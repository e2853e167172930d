package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// UploadRepository tracks artifacts accepted by the storage backend.
type UploadRepository interface {
	Create(ctx context.Context, record *models.UploadRecord) error
	// FindByChecksum returns the owner's earlier upload of identical bytes, or nil.
	FindByChecksum(ctx context.Context, ownerID, checksum string) (*models.UploadRecord, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.UploadRecord, error)
	// FindByRef returns the upload a storage reference points at, or nil.
	FindByRef(ctx context.Context, ref string) (*models.UploadRecord, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository constructs an upload repository.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, record *models.UploadRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *uploadRepository) FindByChecksum(ctx context.Context, ownerID, checksum string) (*models.UploadRecord, error) {
	var record models.UploadRecord
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND checksum = ?", ownerID, checksum).
		Order("id ASC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *uploadRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.UploadRecord, error) {
	var records []models.UploadRecord
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *uploadRepository) FindByRef(ctx context.Context, ref string) (*models.UploadRecord, error) {
	var record models.UploadRecord
	err := r.db.WithContext(ctx).Where("ref = ?", ref).Order("id ASC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
