package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/service"
	"github.com/noah-isme/gema-classroom-api/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints. staff guards the teacher-only routes.
func (h *AssignmentHandler) Register(router fiber.Router, staff fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/progress", guarded(staff, h.progress)...)
	router.Get("/:id/students", guarded(staff, h.students)...)
	router.Post("/:id/sync", guarded(staff, h.Sync)...)
}

// Assign handles POST /tests/:id/assignments.
func (h *AssignmentHandler) Assign(c *fiber.Ctx) error {
	testID, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	var payload dto.AssignTestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return invalidBody(c)
		}
	}

	result, err := h.service.AssignTest(c.UserContext(), testID, payload, activityActorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment published", result)
}

// Sync handles POST /assignments/:id/sync.
func (h *AssignmentHandler) Sync(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	result, err := h.service.Sync(c.UserContext(), id, activityActorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment synchronised", result)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	classID, err := parseQueryUint(c, "class_id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid class_id", nil)
	}
	testID, err := parseQueryUint(c, "test_id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid test_id", nil)
	}
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid page", nil)
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid page_size", nil)
	}

	result, err := h.service.List(c.UserContext(), dto.AssignmentListRequest{
		ClassID:  classID,
		TestID:   testID,
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.OK(c, result.Items, "assignments retrieved", result.Pagination)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	assignment, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) progress(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	progress, err := h.service.Progress(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if progress.CacheHit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}

	return utils.SendSuccess(c, "assignment progress retrieved", progress)
}

func (h *AssignmentHandler) students(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	records, err := h.service.ListStudentAssignments(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "student assignments retrieved", records)
}
