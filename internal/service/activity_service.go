package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/repository"
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]interface{}
}

// ActivityRecorder defines behaviour for recording audit events.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityService exposes methods to query and persist the audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityRecordRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity service.
func NewActivityService(repo repository.ActivityRecordRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.EntityType) == "" {
		return fmt.Errorf("entity type is required")
	}

	record := models.ActivityRecord{
		ActorID:    entry.ActorID,
		Action:     strings.ToLower(strings.TrimSpace(entry.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(entry.EntityType)),
		EntityID:   entry.EntityID,
		Metadata:   sanitizeMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist activity record")
		return err
	}

	return nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityRecordFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		ActorID:    strings.TrimSpace(req.ActorID),
		Action:     strings.TrimSpace(req.Action),
		EntityType: strings.TrimSpace(req.EntityType),
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.NewActivityResponse(record))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ActivityListResponse{Items: items, Pagination: pagination}, nil
}

// sanitizeMetadata masks values whose keys hint at addresses or secrets
// before they reach the audit table.
func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
