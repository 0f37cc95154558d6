package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/models"
	"github.com/noah-isme/gema-classroom-api/internal/service"
	"github.com/noah-isme/gema-classroom-api/internal/utils"
)

// StudentAssignmentHandler exposes status updates for individual student assignments.
type StudentAssignmentHandler struct {
	service    service.StudentAssignmentService
	gradeRoles map[string]struct{}
	logger     zerolog.Logger
}

// NewStudentAssignmentHandler constructs the handler. Only gradeRoles may move a record to graded.
func NewStudentAssignmentHandler(service service.StudentAssignmentService, logger zerolog.Logger, gradeRoles ...string) *StudentAssignmentHandler {
	roles := make(map[string]struct{}, len(gradeRoles))
	for _, role := range gradeRoles {
		roles[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return &StudentAssignmentHandler{
		service:    service,
		gradeRoles: roles,
		logger:     logger.With().Str("component", "student_assignment_handler").Logger(),
	}
}

// Register attaches the routes.
func (h *StudentAssignmentHandler) Register(router fiber.Router) {
	router.Patch("/:id/status", h.updateStatus)
}

func (h *StudentAssignmentHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	var payload dto.StudentAssignmentStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	if payload.Status == models.StudentAssignmentStatusGraded && !h.canGrade(userRoleFromContext(c)) {
		return utils.Fail(c, fiber.StatusForbidden, "only teachers can grade", nil)
	}

	record, err := h.service.UpdateStatus(c.UserContext(), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "status updated", record)
}

func (h *StudentAssignmentHandler) canGrade(role string) bool {
	_, ok := h.gradeRoles[strings.ToLower(strings.TrimSpace(role))]
	return ok
}
