package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mathmood/diary-api/internal/service"
	"github.com/mathmood/diary-api/internal/utils"
)

// UploadHandler wires the problem artifact upload route.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register attaches the upload endpoint to the router group.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("", h.upload)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.service.UploadArtifact(c.Context(), userID, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file too large")
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "only photos and voice memos are accepted")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("artifact upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "artifact upload failed")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "artifact stored", result)
}
