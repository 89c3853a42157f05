package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/models"
)

// ActivityRecordFilter narrows activity record queries.
type ActivityRecordFilter struct {
	Page       int
	PageSize   int
	ActorID    string
	Action     string
	EntityType string
}

// ActivityRecordRepository persists audit trail events.
type ActivityRecordRepository interface {
	Create(ctx context.Context, record *models.ActivityRecord) error
	List(ctx context.Context, filter ActivityRecordFilter) ([]models.ActivityRecord, int64, error)
}

type activityRecordRepository struct {
	db *gorm.DB
}

// NewActivityRecordRepository constructs the activity record repository.
func NewActivityRecordRepository(db *gorm.DB) ActivityRecordRepository {
	return &activityRecordRepository{db: db}
}

func (r *activityRecordRepository) Create(ctx context.Context, record *models.ActivityRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *activityRecordRepository) List(ctx context.Context, filter ActivityRecordFilter) ([]models.ActivityRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityRecord{})

	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var records []models.ActivityRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
