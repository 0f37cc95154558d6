package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-classroom-api/internal/service"
	"github.com/noah-isme/gema-classroom-api/internal/utils"
)

// ActivityHandler exposes the classroom audit trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches the routes.
func (h *ActivityHandler) Register(router fiber.Router, staff fiber.Handler) {
	router.Get("", guarded(staff, h.list)...)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	entityID, err := parseQueryUint(c, "entity_id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid entity_id", nil)
	}
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid page", nil)
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil || pageSize < 0 || pageSize > 100 {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid page_size", nil)
	}
	if pageSize == 0 {
		pageSize = 20
	}

	result, err := h.service.List(c.UserContext(), service.ActivityListRequest{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		EntityID:   entityID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.OK(c, result.Items, "activity retrieved", result.Pagination)
}
