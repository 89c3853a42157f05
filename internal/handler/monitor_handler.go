package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/service"
	"github.com/mathmood/diary-api/internal/utils"
)

// MonitorHandler wires the teacher monitoring routes. Every route in this
// group sits behind the operator gate.
type MonitorHandler struct {
	monitor     service.MonitorService
	review      service.ReviewService
	suggestions service.SuggestionService
	activity    service.ActivityService
	logger      zerolog.Logger
}

// NewMonitorHandler constructs the handler.
func NewMonitorHandler(
	monitor service.MonitorService,
	review service.ReviewService,
	suggestions service.SuggestionService,
	activity service.ActivityService,
	logger zerolog.Logger,
) *MonitorHandler {
	return &MonitorHandler{
		monitor:     monitor,
		review:      review,
		suggestions: suggestions,
		activity:    activity,
		logger:      logger.With().Str("component", "monitor_handler").Logger(),
	}
}

// Register attaches monitoring endpoints to the router group.
func (h *MonitorHandler) Register(router fiber.Router) {
	router.Get("/snapshot", h.snapshot)
	router.Get("/dates", h.dates)
	router.Get("/dates/:key", h.dateDetail)
	router.Get("/classes", h.classes)
	router.Get("/classes/:key", h.classDetail)
	router.Get("/unreviewed", h.unreviewed)
	router.Get("/ranking", h.ranking)
	router.Get("/entries/:id", h.entryDetail)
	router.Post("/entries/:id/feedback", h.saveFeedback)
	router.Post("/entries/:id/suggest-feedback", h.suggestFeedback)
	router.Get("/activity", h.activityList)
}

func (h *MonitorHandler) snapshot(c *fiber.Ctx) error {
	snapshot, err := h.monitor.Snapshot(c.Context())
	if err != nil {
		return h.internalError(c, err, "snapshot build failed")
	}

	return utils.SendSuccess(c, "snapshot retrieved", snapshot)
}

func (h *MonitorHandler) dates(c *fiber.Ctx) error {
	dates, err := h.monitor.Dates(c.Context())
	if err != nil {
		return h.internalError(c, err, "date list failed")
	}

	return utils.SendSuccess(c, "dates retrieved", dates)
}

func (h *MonitorHandler) dateDetail(c *fiber.Ctx) error {
	bucket, err := h.monitor.DateDetail(c.Context(), c.Params("key"))
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "no entries on this date")
		}
		return h.internalError(c, err, "date detail failed")
	}

	return utils.SendSuccess(c, "date detail retrieved", bucket)
}

func (h *MonitorHandler) classes(c *fiber.Ctx) error {
	classes, err := h.monitor.Classes(c.Context())
	if err != nil {
		return h.internalError(c, err, "class roster failed")
	}

	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *MonitorHandler) classDetail(c *fiber.Ctx) error {
	class, err := h.monitor.ClassDetail(c.Context(), c.Params("key"))
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		return h.internalError(c, err, "class detail failed")
	}

	return utils.SendSuccess(c, "class retrieved", class)
}

func (h *MonitorHandler) unreviewed(c *fiber.Ctx) error {
	rows, err := h.monitor.Unreviewed(c.Context(), c.Query("sort_by"), c.Query("order"))
	if err != nil {
		return h.internalError(c, err, "unreviewed queue failed")
	}

	return utils.SendSuccess(c, "unreviewed entries retrieved", rows)
}

func (h *MonitorHandler) ranking(c *fiber.Ctx) error {
	rows, err := h.monitor.Ranking(c.Context())
	if err != nil {
		return h.internalError(c, err, "ranking failed")
	}

	return utils.SendSuccess(c, "ranking retrieved", rows)
}

func (h *MonitorHandler) entryDetail(c *fiber.Ctx) error {
	entry, display, err := h.monitor.EntryDetail(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "diary entry not found")
		}
		return h.internalError(c, err, "entry detail failed")
	}

	return utils.SendSuccess(c, "entry retrieved", fiber.Map{
		"entry":   entry,
		"display": display,
	})
}

func (h *MonitorHandler) saveFeedback(c *fiber.Ctx) error {
	var payload dto.SaveFeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.review.SaveFeedback(c.Context(), userIDFromContext(c), c.Params("id"), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEntryNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "diary entry not found")
		case errors.Is(err, service.ErrBlankFeedback):
			return utils.SendError(c, fiber.StatusBadRequest, "feedback must not be blank")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return h.internalError(c, err, "feedback save failed")
		}
	}

	return utils.SendSuccess(c, "feedback saved", result)
}

func (h *MonitorHandler) suggestFeedback(c *fiber.Ctx) error {
	suggestion, err := h.suggestions.SuggestFeedback(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEntryNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "diary entry not found")
		case errors.Is(err, service.ErrSuggestionUnavailable):
			return utils.SendError(c, fiber.StatusBadGateway, "feedback suggestion unavailable")
		default:
			return h.internalError(c, err, "feedback suggestion failed")
		}
	}

	return utils.SendSuccess(c, "feedback suggested", suggestion)
}

func (h *MonitorHandler) activityList(c *fiber.Ctx) error {
	var req dto.ActivityListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	list, err := h.activity.List(c.Context(), req)
	if err != nil {
		return h.internalError(c, err, "activity list failed")
	}

	return utils.SendSuccess(c, "activity retrieved", list)
}

func (h *MonitorHandler) internalError(c *fiber.Ctx, err error, message string) error {
	requestLogger(h.logger, c).Error().Err(err).Msg(message)
	return utils.SendError(c, fiber.StatusInternalServerError, message)
}
