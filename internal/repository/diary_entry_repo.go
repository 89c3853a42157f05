package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/models"
)

// FeedbackWrite captures the persisted outcome of a feedback save.
type FeedbackWrite struct {
	Entry        models.DiaryEntry
	TokenGranted bool
}

// DiaryEntryRepository provides access to diary entry records.
type DiaryEntryRepository interface {
	Create(ctx context.Context, entry *models.DiaryEntry) error
	GetByID(ctx context.Context, id string) (models.DiaryEntry, error)
	// ListAll performs an unordered full scan; the aggregation engine always
	// sorts client-side so no composite index is ever required of the store.
	ListAll(ctx context.Context) ([]models.DiaryEntry, error)
	ListByProfile(ctx context.Context, profileID string) ([]models.DiaryEntry, error)
	DeleteOwned(ctx context.Context, id, profileID string) error
	SaveFeedback(ctx context.Context, id, feedback string, feedbackAt time.Time, grantToken bool) (FeedbackWrite, error)
}

type diaryEntryRepository struct {
	db *gorm.DB
}

// NewDiaryEntryRepository constructs a diary entry repository.
func NewDiaryEntryRepository(db *gorm.DB) DiaryEntryRepository {
	return &diaryEntryRepository{db: db}
}

func (r *diaryEntryRepository) Create(ctx context.Context, entry *models.DiaryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *diaryEntryRepository) GetByID(ctx context.Context, id string) (models.DiaryEntry, error) {
	var entry models.DiaryEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return models.DiaryEntry{}, err
	}
	return entry, nil
}

func (r *diaryEntryRepository) ListAll(ctx context.Context) ([]models.DiaryEntry, error) {
	var entries []models.DiaryEntry
	if err := r.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *diaryEntryRepository) ListByProfile(ctx context.Context, profileID string) ([]models.DiaryEntry, error) {
	var entries []models.DiaryEntry
	if err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *diaryEntryRepository) DeleteOwned(ctx context.Context, id, profileID string) error {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		Delete(&models.DiaryEntry{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SaveFeedback writes the feedback text and timestamp unconditionally, then
// applies the one-time token grant. The grant rides on a conditional UPDATE
// whose WHERE clause only matches while token_granted is still false, so two
// racing teacher sessions cannot both increment the balance: the store, not
// client state, enforces the idempotence.
func (r *diaryEntryRepository) SaveFeedback(ctx context.Context, id, feedback string, feedbackAt time.Time, grantToken bool) (FeedbackWrite, error) {
	var result FeedbackWrite

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.DiaryEntry
		if err := tx.First(&entry, "id = ?", id).Error; err != nil {
			return err
		}

		update := tx.Model(&models.DiaryEntry{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"feedback":    feedback,
				"feedback_at": feedbackAt,
			})
		if update.Error != nil {
			return update.Error
		}

		if grantToken {
			grant := tx.Model(&models.DiaryEntry{}).
				Where("id = ? AND token_granted = ?", id, false).
				Update("token_granted", true)
			if grant.Error != nil {
				return grant.Error
			}

			if grant.RowsAffected == 1 {
				increment := tx.Model(&models.Profile{}).
					Where("id = ?", entry.ProfileID).
					Update("token_balance", gorm.Expr("token_balance + ?", 1))
				if increment.Error != nil {
					return increment.Error
				}
				result.TokenGranted = true
			}
		}

		if err := tx.First(&result.Entry, "id = ?", id).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return FeedbackWrite{}, err
	}

	return result, nil
}
