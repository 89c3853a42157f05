package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/repository"
	"github.com/mathmood/diary-api/pkg/ai"
)

// ErrSuggestionUnavailable indicates the AI backend failed to produce a
// draft. Callers keep whatever draft the teacher already typed.
var ErrSuggestionUnavailable = errors.New("feedback suggestion unavailable")

// SuggestionService drafts teacher feedback for a diary entry.
type SuggestionService interface {
	SuggestFeedback(ctx context.Context, entryID string) (dto.SuggestFeedbackResponse, error)
}

type suggestionService struct {
	entries   repository.DiaryEntryRepository
	suggester ai.Suggester
	logger    zerolog.Logger
}

// NewSuggestionService constructs the suggestion service.
func NewSuggestionService(entries repository.DiaryEntryRepository, suggester ai.Suggester, logger zerolog.Logger) SuggestionService {
	return &suggestionService{
		entries:   entries,
		suggester: suggester,
		logger:    logger.With().Str("component", "suggestion_service").Logger(),
	}
}

func (s *suggestionService) SuggestFeedback(ctx context.Context, entryID string) (dto.SuggestFeedbackResponse, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SuggestFeedbackResponse{}, ErrEntryNotFound
		}
		return dto.SuggestFeedbackResponse{}, err
	}

	suggestion, err := s.suggester.SuggestFeedback(ctx, ai.SuggestionInput{
		Mood:               entry.Mood,
		Reflection:         entry.Reflection,
		ProblemExplanation: entry.ProblemExplanation,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("entry_id", entryID).Msg("feedback suggestion failed")
		return dto.SuggestFeedbackResponse{}, ErrSuggestionUnavailable
	}

	return dto.SuggestFeedbackResponse{Suggestion: suggestion}, nil
}
