package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures auditable events triggered by faculty and administrators.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    string            `gorm:"size:64;not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

// UploadRecord tracks an artifact accepted by the storage backend.
type UploadRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   string    `gorm:"size:64;index" json:"owner_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	Ref       string    `gorm:"size:512;not null;index" json:"ref"`
	MimeType  string    `gorm:"size:128" json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `gorm:"size:64" json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model managed by migrations.
func All() []interface{} {
	return []interface{}{
		&Course{},
		&RosterEntry{},
		&Book{},
		&Material{},
		&Assignment{},
		&Submission{},
		&ActivityLog{},
		&UploadRecord{},
	}
}
