package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/repository"
)

// ErrBlankFeedback indicates the feedback text is empty once trimmed and
// sanitized. Saving blank feedback would consume the entry's one-time token
// while leaving it in the unreviewed queue, so it is rejected before any
// write.
var ErrBlankFeedback = errors.New("feedback must not be blank")

// ReviewService persists teacher feedback on diary entries.
type ReviewService interface {
	SaveFeedback(ctx context.Context, actorID, entryID string, req dto.SaveFeedbackRequest) (dto.SaveFeedbackResponse, error)
}

type reviewService struct {
	entries     repository.DiaryEntryRepository
	recorder    ActivityRecorder
	invalidator SnapshotInvalidator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReviewService constructs the review service.
func NewReviewService(
	entries repository.DiaryEntryRepository,
	recorder ActivityRecorder,
	invalidator SnapshotInvalidator,
	validate *validator.Validate,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		entries:     entries,
		recorder:    recorder,
		invalidator: invalidator,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "review_service").Logger(),
		now:         time.Now,
	}
}

// SaveFeedback writes the feedback text and, when requested, grants the
// entry's token. The feedback text always overwrites; the token is granted
// at most once per entry no matter how often feedback is re-saved.
func (s *reviewService) SaveFeedback(ctx context.Context, actorID, entryID string, req dto.SaveFeedbackRequest) (dto.SaveFeedbackResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SaveFeedbackResponse{}, err
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(strings.TrimSpace(req.Feedback)))
	if feedback == "" {
		return dto.SaveFeedbackResponse{}, ErrBlankFeedback
	}

	write, err := s.entries.SaveFeedback(ctx, entryID, feedback, s.now(), req.GrantToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SaveFeedbackResponse{}, ErrEntryNotFound
		}
		s.logger.Error().Err(err).Str("entry_id", entryID).Msg("failed to save feedback")
		return dto.SaveFeedbackResponse{}, err
	}

	s.logger.Info().
		Str("entry_id", entryID).
		Str("actor_id", actorID).
		Bool("token_granted", write.TokenGranted).
		Msg("feedback saved")

	if s.recorder != nil {
		record := ActivityEntry{
			ActorID:    actorID,
			Action:     "save_feedback",
			EntityType: "diary_entry",
			EntityID:   entryID,
			Metadata: map[string]interface{}{
				"token_granted": write.TokenGranted,
			},
		}
		if err := s.recorder.Record(ctx, record); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record review activity")
		}
	}

	s.invalidate(ctx)

	return dto.SaveFeedbackResponse{
		Entry:        dto.NewDiaryEntryResponse(write.Entry),
		TokenGranted: write.TokenGranted,
	}, nil
}

func (s *reviewService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateSnapshot(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate monitor snapshot")
	}
}
