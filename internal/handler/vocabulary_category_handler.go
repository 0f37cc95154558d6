package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/service"
	"github.com/noah-isme/gema-classroom-api/internal/utils"
)

// VocabularyCategoryHandler exposes vocabulary category CRUD.
type VocabularyCategoryHandler struct {
	service service.VocabularyCategoryService
	logger  zerolog.Logger
}

// NewVocabularyCategoryHandler constructs the handler.
func NewVocabularyCategoryHandler(service service.VocabularyCategoryService, logger zerolog.Logger) *VocabularyCategoryHandler {
	return &VocabularyCategoryHandler{
		service: service,
		logger:  logger.With().Str("component", "vocabulary_category_handler").Logger(),
	}
}

// Register attaches the category routes. staff guards the mutating ones.
func (h *VocabularyCategoryHandler) Register(router fiber.Router, staff fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", guarded(staff, h.create)...)
	router.Put("/:id", guarded(staff, h.update)...)
	router.Delete("/:id", guarded(staff, h.delete)...)
}

func (h *VocabularyCategoryHandler) list(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "vocabulary categories retrieved", categories)
}

func (h *VocabularyCategoryHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	category, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "vocabulary category retrieved", category)
}

func (h *VocabularyCategoryHandler) create(c *fiber.Ctx) error {
	var payload dto.VocabularyCategoryRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	category, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "vocabulary category created", category)
}

func (h *VocabularyCategoryHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	var payload dto.VocabularyCategoryRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	category, err := h.service.Update(c.UserContext(), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "vocabulary category updated", category)
}

func (h *VocabularyCategoryHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return invalidIdentifier(c)
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "vocabulary category deleted", fiber.Map{"id": id})
}
