package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// BookFilter narrows library queries.
type BookFilter struct {
	Kind     string
	CourseID *uint
	Search   string
}

// LibraryRepository exposes books and workbook materials.
type LibraryRepository interface {
	ListBooks(ctx context.Context, filter BookFilter) ([]models.Book, error)
	ListMaterials(ctx context.Context, courseID uint) ([]models.Material, error)
}

type libraryRepository struct {
	db *gorm.DB
}

// NewLibraryRepository constructs a library repository.
func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) ListBooks(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	query := r.db.WithContext(ctx).Model(&models.Book{})

	if filter.Kind != "" {
		query = query.Where("kind = ?", strings.ToLower(filter.Kind))
	}

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(isbn) LIKE ?", pattern, pattern, pattern)
	}

	var books []models.Book
	if err := query.Order("id ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *libraryRepository) ListMaterials(ctx context.Context, courseID uint) ([]models.Material, error) {
	var materials []models.Material
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}
