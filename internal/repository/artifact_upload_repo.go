package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/models"
)

// ArtifactUploadRepository persists metadata about stored artifact files.
type ArtifactUploadRepository interface {
	Create(ctx context.Context, record *models.ArtifactUpload) error
	ListByProfile(ctx context.Context, profileID string) ([]models.ArtifactUpload, error)
}

type artifactUploadRepository struct {
	db *gorm.DB
}

// NewArtifactUploadRepository constructs a repository for artifact uploads.
func NewArtifactUploadRepository(db *gorm.DB) ArtifactUploadRepository {
	return &artifactUploadRepository{db: db}
}

func (r *artifactUploadRepository) Create(ctx context.Context, record *models.ArtifactUpload) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *artifactUploadRepository) ListByProfile(ctx context.Context, profileID string) ([]models.ArtifactUpload, error) {
	var records []models.ArtifactUpload
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
