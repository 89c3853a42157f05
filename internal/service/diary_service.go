package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/repository"
)

// ErrEntryNotOwned indicates the entry exists but belongs to someone else,
// or does not exist at all. The two cases are deliberately indistinguishable.
var ErrEntryNotOwned = errors.New("diary entry not found for this profile")

// DiaryService manages a student's own diary entries.
type DiaryService interface {
	SubmitEntry(ctx context.Context, userID string, req dto.SubmitEntryRequest) (dto.DiaryEntryResponse, error)
	ListOwn(ctx context.Context, userID string) ([]dto.DiaryEntryResponse, error)
	GetOwn(ctx context.Context, userID, entryID string) (dto.DiaryEntryResponse, error)
	DeleteOwn(ctx context.Context, userID, entryID string) error
}

type diaryService struct {
	entries     repository.DiaryEntryRepository
	profiles    repository.ProfileRepository
	invalidator SnapshotInvalidator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDiaryService constructs the diary service.
func NewDiaryService(
	entries repository.DiaryEntryRepository,
	profiles repository.ProfileRepository,
	invalidator SnapshotInvalidator,
	validate *validator.Validate,
	logger zerolog.Logger,
) DiaryService {
	return &diaryService{
		entries:     entries,
		profiles:    profiles,
		invalidator: invalidator,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "diary_service").Logger(),
		now:         time.Now,
	}
}

// SubmitEntry validates and persists a new diary entry. The owner's display
// identity is copied onto the entry at submission time so the monitoring
// views can still label it if the profile later loses its class info.
func (s *diaryService) SubmitEntry(ctx context.Context, userID string, req dto.SubmitEntryRequest) (dto.DiaryEntryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DiaryEntryResponse{}, err
	}

	if !models.IsValidMood(req.Mood) {
		return dto.DiaryEntryResponse{}, ErrInvalidMood
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DiaryEntryResponse{}, ErrProfileNotFound
		}
		return dto.DiaryEntryResponse{}, err
	}

	activityAt := req.ActivityAt
	if activityAt.IsZero() {
		activityAt = s.now()
	}

	entry := models.DiaryEntry{
		ID:        uuid.NewString(),
		ProfileID: userID,

		OwnerName:           profile.Name,
		OwnerEmail:          profile.Email,
		OwnerEnrollmentCode: profile.EnrollmentCode,
		OwnerGrade:          profile.Grade,
		OwnerClassSection:   profile.ClassSection,
		OwnerRollNumber:     profile.RollNumber,

		SubmittedAt: s.now(),

		Mood:               req.Mood,
		Reflection:         s.sanitizer.Sanitize(strings.TrimSpace(req.Reflection)),
		StudyHours:         req.StudyHours,
		StudyMinutes:       req.StudyMinutes,
		ProblemExplanation: s.sanitizer.Sanitize(strings.TrimSpace(req.ProblemExplanation)),
	}
	stampActivity(&entry, activityAt)

	if req.ProblemArtifact != nil {
		entry.ProblemArtifact = datatypes.JSONMap{
			"kind":      req.ProblemArtifact.Kind,
			"content":   s.sanitizer.Sanitize(req.ProblemArtifact.Content),
			"image_url": req.ProblemArtifact.ImageURL,
		}
	}

	if len(req.Transcript) > 0 {
		transcript := make([]models.TranscriptTurn, 0, len(req.Transcript))
		for _, turn := range req.Transcript {
			transcript = append(transcript, models.TranscriptTurn{
				Role: turn.Role,
				Text: s.sanitizer.Sanitize(turn.Text),
			})
		}
		payload, err := json.Marshal(transcript)
		if err != nil {
			return dto.DiaryEntryResponse{}, fmt.Errorf("failed to encode transcript: %w", err)
		}
		entry.Transcript = datatypes.JSON(payload)
	}

	if err := s.entries.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Str("profile_id", userID).Msg("failed to create diary entry")
		return dto.DiaryEntryResponse{}, err
	}

	s.logger.Info().
		Str("entry_id", entry.ID).
		Str("profile_id", userID).
		Str("activity_date", entry.ActivityDate).
		Msg("diary entry submitted")
	s.invalidate(ctx)

	return dto.NewDiaryEntryResponse(entry), nil
}

func (s *diaryService) ListOwn(ctx context.Context, userID string) ([]dto.DiaryEntryResponse, error) {
	entries, err := s.entries.ListByProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DiaryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewDiaryEntryResponse(entry))
	}

	return responses, nil
}

func (s *diaryService) GetOwn(ctx context.Context, userID, entryID string) (dto.DiaryEntryResponse, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DiaryEntryResponse{}, ErrEntryNotOwned
		}
		return dto.DiaryEntryResponse{}, err
	}

	if entry.ProfileID != userID {
		return dto.DiaryEntryResponse{}, ErrEntryNotOwned
	}

	return dto.NewDiaryEntryResponse(entry), nil
}

func (s *diaryService) DeleteOwn(ctx context.Context, userID, entryID string) error {
	if err := s.entries.DeleteOwned(ctx, entryID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotOwned
		}
		return err
	}

	s.logger.Info().Str("entry_id", entryID).Str("profile_id", userID).Msg("diary entry deleted")
	s.invalidate(ctx)

	return nil
}

func (s *diaryService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateSnapshot(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate monitor snapshot")
	}
}

// stampActivity decomposes the activity instant into the zero-padded string
// components the aggregation keys are built from.
func stampActivity(entry *models.DiaryEntry, at time.Time) {
	entry.ActivityYear = fmt.Sprintf("%04d", at.Year())
	entry.ActivityMonth = fmt.Sprintf("%02d", int(at.Month()))
	entry.ActivityDay = fmt.Sprintf("%02d", at.Day())
	entry.ActivityHour = fmt.Sprintf("%02d", at.Hour())
	entry.ActivityMinute = fmt.Sprintf("%02d", at.Minute())
	entry.ActivityDate = fmt.Sprintf("%s-%s-%s", entry.ActivityYear, entry.ActivityMonth, entry.ActivityDay)
	entry.ActivityTime = fmt.Sprintf("%s:%s", entry.ActivityHour, entry.ActivityMinute)
}
