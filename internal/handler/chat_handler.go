package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/service"
	"github.com/mathmood/diary-api/internal/utils"
)

// ChatHandler wires the in-diary chatbot relay route.
type ChatHandler struct {
	service service.ChatRelayService
	logger  zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service service.ChatRelayService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register attaches the chat endpoint to the router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("", h.relay)
}

func (h *ChatHandler) relay(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ChatRelayRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	reply, err := h.service.Relay(c.Context(), userID, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChatUnavailable):
			return utils.SendError(c, fiber.StatusBadGateway, "chat assistant unavailable")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("chat relay failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "chat relay failed")
		}
	}

	return utils.SendSuccess(c, "reply generated", reply)
}
