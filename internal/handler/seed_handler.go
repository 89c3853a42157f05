package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/service"
	"github.com/mathmood/diary-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for loading demo data.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/demo", h.demo)
	router.Post("/import", h.importEntries)
}

func (h *SeedHandler) demo(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")

	result, err := h.service.SeedDemo(c.Context(), token)
	if err != nil {
		switch err {
		case service.ErrSeedDisabled:
			return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
		case service.ErrSeedUnauthorized:
			return utils.SendError(c, fiber.StatusForbidden, "invalid token")
		default:
			h.logger.Error().Err(err).Msg("seed operation failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "seed operation failed")
		}
	}

	return utils.SendSuccess(c, "demo classroom seeded", result)
}

func (h *SeedHandler) importEntries(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")

	var payload dto.ImportEntriesRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.ImportEntries(c.Context(), token, payload.Entries)
	if err != nil {
		switch err {
		case service.ErrSeedDisabled:
			return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
		case service.ErrSeedUnauthorized:
			return utils.SendError(c, fiber.StatusForbidden, "invalid token")
		default:
			h.logger.Error().Err(err).Msg("import failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "import failed")
		}
	}

	return utils.SendSuccess(c, "legacy entries imported", result)
}
