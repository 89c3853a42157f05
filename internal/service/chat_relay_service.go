package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/pkg/ai"
)

// ErrChatUnavailable indicates the AI backend failed to answer.
var ErrChatUnavailable = errors.New("chat assistant unavailable")

// ChatRelayService forwards student chat turns to the AI assistant. The
// transcript travels with every request; nothing is stored server-side until
// the student submits the entry the chat belongs to.
type ChatRelayService interface {
	Relay(ctx context.Context, userID string, req dto.ChatRelayRequest) (dto.ChatRelayResponse, error)
}

type chatRelayService struct {
	suggester ai.Suggester
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewChatRelayService constructs the chat relay service.
func NewChatRelayService(suggester ai.Suggester, validate *validator.Validate, logger zerolog.Logger) ChatRelayService {
	return &chatRelayService{
		suggester: suggester,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "chat_relay_service").Logger(),
	}
}

func (s *chatRelayService) Relay(ctx context.Context, userID string, req dto.ChatRelayRequest) (dto.ChatRelayResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ChatRelayResponse{}, err
	}

	transcript := make([]ai.ChatTurn, 0, len(req.Transcript))
	for _, turn := range req.Transcript {
		role := "user"
		if turn.Role == models.TranscriptRoleAssistant {
			role = "assistant"
		}
		transcript = append(transcript, ai.ChatTurn{
			Role: role,
			Text: s.sanitizer.Sanitize(turn.Text),
		})
	}

	message := s.sanitizer.Sanitize(strings.TrimSpace(req.Message))

	reply, err := s.suggester.Chat(ctx, transcript, message)
	if err != nil {
		s.logger.Error().Err(err).Str("profile_id", userID).Msg("chat relay failed")
		return dto.ChatRelayResponse{}, ErrChatUnavailable
	}

	return dto.ChatRelayResponse{Reply: reply}, nil
}
