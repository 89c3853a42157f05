package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/aggregate"
	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/identity"
	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/normalize"
	"github.com/mathmood/diary-api/internal/observability"
	"github.com/mathmood/diary-api/internal/repository"
)

const snapshotCacheKey = "monitor:snapshot"

var (
	// ErrEntryNotFound indicates the requested diary entry does not exist.
	ErrEntryNotFound = errors.New("diary entry not found")
	// ErrClassNotFound indicates no roster bucket exists for the key.
	ErrClassNotFound = errors.New("class not found")
)

// SnapshotInvalidator drops the cached monitoring snapshot after a write
// that changes what teachers see.
type SnapshotInvalidator interface {
	InvalidateSnapshot(ctx context.Context) error
}

// MonitorService materializes the teacher-facing monitoring views.
type MonitorService interface {
	SnapshotInvalidator
	Snapshot(ctx context.Context) (dto.MonitorSnapshotResponse, error)
	Dates(ctx context.Context) (dto.DateListResponse, error)
	DateDetail(ctx context.Context, key string) (aggregate.DateBucket, error)
	Classes(ctx context.Context) (aggregate.ClassIndex, error)
	ClassDetail(ctx context.Context, key string) (aggregate.ClassBucket, error)
	Unreviewed(ctx context.Context, sortBy, order string) ([]aggregate.UnreviewedRow, error)
	Ranking(ctx context.Context) ([]aggregate.RankingRow, error)
	EntryDetail(ctx context.Context, entryID string) (dto.DiaryEntryResponse, normalize.Display, error)
}

type monitorService struct {
	entries    repository.DiaryEntryRepository
	profiles   repository.ProfileRepository
	classifier *identity.Classifier
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewMonitorService constructs the monitoring service.
func NewMonitorService(
	entries repository.DiaryEntryRepository,
	profiles repository.ProfileRepository,
	classifier *identity.Classifier,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) MonitorService {
	return &monitorService{
		entries:    entries,
		profiles:   profiles,
		classifier: classifier,
		cache:      cache,
		cacheTTL:   ttl,
		logger:     logger.With().Str("component", "monitor_service").Logger(),
		now:        time.Now,
	}
}

// Snapshot returns the cached snapshot when fresh and rebuilds it from full
// store scans otherwise. Every view is derived from the same snapshot so the
// calendar, roster, queue, and ranking never disagree with each other.
func (s *monitorService) Snapshot(ctx context.Context) (dto.MonitorSnapshotResponse, error) {
	tracer := otel.Tracer("github.com/mathmood/diary-api/internal/service/monitor")
	ctx, span := tracer.Start(ctx, "monitor.snapshot")
	span.SetAttributes(attribute.String("monitor.cache_key", snapshotCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, snapshotCacheKey).Result()
		if err == nil {
			var response dto.MonitorSnapshotResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.SnapshotCacheHits().Inc()
				span.SetAttributes(attribute.Bool("monitor.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read snapshot cache")
			span.RecordError(err)
		}
	}

	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_entries_failed")
		return dto.MonitorSnapshotResponse{}, err
	}

	profileRows, err := s.profiles.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_profiles_failed")
		return dto.MonitorSnapshotResponse{}, err
	}

	profiles := make(map[string]models.Profile, len(profileRows))
	for _, profile := range profileRows {
		profiles[profile.ID] = profile
	}

	snapshot := aggregate.BuildSnapshot(aggregate.Input{
		Entries:    entries,
		Profiles:   profiles,
		Classifier: s.classifier,
		Logger:     s.logger,
	})
	observability.SnapshotRebuilds().Inc()
	span.SetAttributes(
		attribute.Int("monitor.entry_count", len(entries)),
		attribute.Int("monitor.profile_count", len(profileRows)),
	)

	response := dto.MonitorSnapshotResponse{
		Snapshot:    snapshot,
		GeneratedAt: s.now().UTC(),
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, snapshotCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store snapshot cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *monitorService) Dates(ctx context.Context) (dto.DateListResponse, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return dto.DateListResponse{}, err
	}

	days := make([]dto.DateSummary, 0, len(snapshot.Snapshot.Dates.Days))
	for _, day := range snapshot.Snapshot.Dates.Days {
		days = append(days, dto.DateSummary{Key: day.Key, Entries: day.Count})
	}

	return dto.DateListResponse{Days: days}, nil
}

func (s *monitorService) DateDetail(ctx context.Context, key string) (aggregate.DateBucket, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return aggregate.DateBucket{}, err
	}

	for _, day := range snapshot.Snapshot.Dates.Days {
		if day.Key == key {
			return day, nil
		}
	}

	return aggregate.DateBucket{}, ErrEntryNotFound
}

func (s *monitorService) Classes(ctx context.Context) (aggregate.ClassIndex, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return aggregate.ClassIndex{}, err
	}

	return snapshot.Snapshot.Classes, nil
}

func (s *monitorService) ClassDetail(ctx context.Context, key string) (aggregate.ClassBucket, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return aggregate.ClassBucket{}, err
	}

	for _, class := range snapshot.Snapshot.Classes.Classes {
		if class.Key == key {
			return class, nil
		}
	}

	return aggregate.ClassBucket{}, ErrClassNotFound
}

// Unreviewed re-sorts the cached queue for the requested key and order.
// Unknown values fall back to date descending, the view's default.
func (s *monitorService) Unreviewed(ctx context.Context, sortBy, order string) ([]aggregate.UnreviewedRow, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	key := aggregate.SortByDate
	if sortBy == string(aggregate.SortByClass) {
		key = aggregate.SortByClass
	}

	direction := aggregate.OrderDesc
	if order == string(aggregate.OrderAsc) {
		direction = aggregate.OrderAsc
	}

	rows := make([]aggregate.UnreviewedRow, len(snapshot.Snapshot.Unreviewed))
	copy(rows, snapshot.Snapshot.Unreviewed)
	aggregate.SortUnreviewed(rows, key, direction)

	return rows, nil
}

func (s *monitorService) Ranking(ctx context.Context) ([]aggregate.RankingRow, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return snapshot.Snapshot.Ranking, nil
}

// EntryDetail loads one entry fresh from the store together with its display
// identity, falling back to the entry's cached owner fields when the live
// profile is gone.
func (s *monitorService) EntryDetail(ctx context.Context, entryID string) (dto.DiaryEntryResponse, normalize.Display, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DiaryEntryResponse{}, normalize.Display{}, ErrEntryNotFound
		}
		return dto.DiaryEntryResponse{}, normalize.Display{}, err
	}

	var profile *models.Profile
	if loaded, err := s.profiles.GetByID(ctx, entry.ProfileID); err == nil {
		profile = &loaded
	}

	return dto.NewDiaryEntryResponse(entry), normalize.ResolveDisplay(entry, profile), nil
}

func (s *monitorService) InvalidateSnapshot(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	if err := s.cache.Del(ctx, snapshotCacheKey).Err(); err != nil {
		return err
	}

	return nil
}
