package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/service"
	"github.com/mathmood/diary-api/internal/utils"
)

// DiaryHandler wires the student-facing diary routes.
type DiaryHandler struct {
	service service.DiaryService
	logger  zerolog.Logger
}

// NewDiaryHandler constructs the handler.
func NewDiaryHandler(service service.DiaryService, logger zerolog.Logger) *DiaryHandler {
	return &DiaryHandler{
		service: service,
		logger:  logger.With().Str("component", "diary_handler").Logger(),
	}
}

// Register attaches diary endpoints to the router group.
func (h *DiaryHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.delete)
}

func (h *DiaryHandler) submit(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmitEntryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := h.service.SubmitEntry(c.Context(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "diary entry submitted", entry)
}

func (h *DiaryHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	entries, err := h.service.ListOwn(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "diary entries retrieved", entries)
}

func (h *DiaryHandler) get(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	entry, err := h.service.GetOwn(c.Context(), userID, c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "diary entry retrieved", entry)
}

func (h *DiaryHandler) delete(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	if err := h.service.DeleteOwn(c.Context(), userID, c.Params("id")); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "diary entry deleted", nil)
}

func (h *DiaryHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEntryNotOwned):
		return utils.SendError(c, fiber.StatusNotFound, "diary entry not found")
	case errors.Is(err, service.ErrProfileNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "profile not found")
	case errors.Is(err, service.ErrInvalidMood):
		return utils.SendError(c, fiber.StatusBadRequest, "mood is not in the palette")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("diary operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "diary operation failed")
	}
}
