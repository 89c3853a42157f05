package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/models"
)

// ProfileRepository provides access to profile records.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (models.Profile, error)
	ListAll(ctx context.Context) ([]models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Profile, error)
	SetRepresentativeMood(ctx context.Context, id, dateKey, mood string) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs a profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (r *profileRepository) ListAll(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Profile, error) {
	tx := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return models.Profile{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Profile{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *profileRepository) SetRepresentativeMood(ctx context.Context, id, dateKey, mood string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.First(&profile, "id = ?", id).Error; err != nil {
			return err
		}

		moods := profile.RepresentativeMoods
		if moods == nil {
			moods = map[string]interface{}{}
		}
		moods[dateKey] = mood

		return tx.Model(&models.Profile{}).
			Where("id = ?", id).
			Update("representative_moods", moods).Error
	})
}
