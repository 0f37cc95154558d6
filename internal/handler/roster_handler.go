package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/service"
	"github.com/noah-isme/gema-classroom-api/internal/utils"
)

// RosterHandler exposes class, student, and enrollment endpoints.
type RosterHandler struct {
	service service.RosterService
	logger  zerolog.Logger
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(service service.RosterService, logger zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		service: service,
		logger:  logger.With().Str("component", "roster_handler").Logger(),
	}
}

// Register attaches the roster routes, every one of them behind staff.
func (h *RosterHandler) Register(router fiber.Router, staff fiber.Handler) {
	router.Post("/classes", guarded(staff, h.createClass)...)
	router.Get("/classes/:id/students", guarded(staff, h.listStudents)...)
	router.Post("/classes/:id/enrollments", guarded(staff, h.enroll)...)
	router.Delete("/classes/:id/enrollments/:studentId", guarded(staff, h.withdraw)...)
	router.Post("/students", guarded(staff, h.createStudent)...)
}

func (h *RosterHandler) createClass(c *fiber.Ctx) error {
	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	class, err := h.service.CreateClass(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *RosterHandler) createStudent(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	student, err := h.service.CreateStudent(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *RosterHandler) enroll(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	var payload dto.EnrollmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	enrollment, err := h.service.Enroll(c.UserContext(), classID, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "student enrolled", enrollment)
}

func (h *RosterHandler) withdraw(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return invalidIdentifier(c)
	}

	if err := h.service.Withdraw(c.UserContext(), classID, studentID); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "student withdrawn", fiber.Map{"class_id": classID, "student_id": studentID})
}

func (h *RosterHandler) listStudents(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	students, err := h.service.ListStudents(c.UserContext(), classID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "students retrieved", students)
}
