package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/service"
	"github.com/mathmood/diary-api/internal/utils"
)

// ProfileHandler wires profile HTTP routes.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register attaches profile endpoints to the router group.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Post("", h.ensure)
	router.Get("", h.get)
	router.Patch("", h.update)
	router.Put("/representative-mood", h.setRepresentativeMood)
}

// ensure creates the profile on first sign-in and returns the existing one
// on every later call. Identity claims from the token fill the blanks when
// the request body omits them.
func (h *ProfileHandler) ensure(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.EnsureProfileRequest
	if err := c.BodyParser(&payload); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if payload.Name == "" {
		payload.Name = userNameFromContext(c)
	}
	if payload.Email == "" {
		payload.Email = userEmailFromContext(c)
	}

	profile, err := h.service.EnsureProfile(c.Context(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile ready", profile)
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	profile, err := h.service.GetProfile(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *ProfileHandler) update(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.service.UpdateProfile(c.Context(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *ProfileHandler) setRepresentativeMood(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.RepresentativeMoodRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.service.SetRepresentativeMood(c.Context(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "representative mood saved", profile)
}

func (h *ProfileHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "profile not found")
	case errors.Is(err, service.ErrInvalidEnrollmentCode):
		return utils.SendError(c, fiber.StatusBadRequest, "enrollment code must be five digits")
	case errors.Is(err, service.ErrInvalidMood):
		return utils.SendError(c, fiber.StatusBadRequest, "mood is not in the palette")
	case errors.Is(err, service.ErrInvalidDateKey):
		return utils.SendError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("profile operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "profile operation failed")
	}
}
