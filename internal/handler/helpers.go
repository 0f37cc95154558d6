package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-classroom-api/internal/middleware"
	"github.com/noah-isme/gema-classroom-api/internal/service"
	"github.com/noah-isme/gema-classroom-api/internal/utils"
)

var (
	badRequestErrors = []error{
		service.ErrInvalidDueDate,
		service.ErrScoreRequired,
		service.ErrScoreOutOfRange,
	}
	notFoundErrors = []error{
		service.ErrAssignmentNotFound,
		service.ErrTestNotFound,
		service.ErrClassNotFound,
		service.ErrStudentNotFound,
		service.ErrEnrollmentNotFound,
		service.ErrStudentAssignmentNotFound,
		service.ErrVocabularyCategoryNotFound,
	}
	conflictErrors = []error{
		service.ErrStudentEmailTaken,
		service.ErrVocabularyCategoryNameTaken,
		service.ErrInvalidStatusTransition,
	}
)

// respondError maps service errors onto the JSON envelope. Unknown errors are logged with the
// request's correlation id and reported as 500.
func respondError(c *fiber.Ctx, base zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	var fanoutErr *service.AssignmentFanoutError
	switch {
	case errors.As(err, &validationErrors):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", utils.ValidationDetails(validationErrors))
	case matchesAny(err, badRequestErrors):
		return utils.Fail(c, fiber.StatusBadRequest, rootMessage(err), nil)
	case matchesAny(err, notFoundErrors):
		return utils.Fail(c, fiber.StatusNotFound, err.Error(), nil)
	case matchesAny(err, conflictErrors):
		return utils.Fail(c, fiber.StatusConflict, err.Error(), nil)
	case errors.As(err, &fanoutErr):
		requestLogger(base, c).Error().Err(err).Uint("assignment_id", fanoutErr.AssignmentID).Msg("assignment fan-out failed")
		status := fiber.StatusInternalServerError
		if errors.Is(err, service.ErrDependencyFailure) {
			status = fiber.StatusServiceUnavailable
		}
		return utils.Fail(c, status, "assignment stored without student records, retry with sync", fiber.Map{
			"kind":          service.FailureKindOf(err),
			"assignment_id": fanoutErr.AssignmentID,
		})
	case errors.Is(err, service.ErrInvalidInput):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, err.Error(), fiber.Map{"kind": service.FailureKindOf(err)})
	case errors.Is(err, service.ErrDependencyFailure):
		requestLogger(base, c).Error().Err(err).Msg("dependency failure")
		return utils.Fail(c, fiber.StatusServiceUnavailable, "a dependency is unavailable, retry later", fiber.Map{"kind": service.FailureKindOf(err)})
	default:
		requestLogger(base, c).Error().Err(err).Msg("internal server error")
		return utils.Fail(c, fiber.StatusInternalServerError, "internal server error", nil)
	}
}

// guarded prepends guard to handler when one is configured.
func guarded(guard fiber.Handler, handler fiber.Handler) []fiber.Handler {
	if guard == nil {
		return []fiber.Handler{handler}
	}
	return []fiber.Handler{guard, handler}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// rootMessage drops wrapped parser noise so clients see the sentinel's text.
func rootMessage(err error) string {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseQueryUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if id, ok := c.Locals(middleware.LocalUserID).(uint); ok {
		return id
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if role, ok := c.Locals(middleware.LocalUserRole).(string); ok {
		return role
	}
	return ""
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	return service.ActivityActor{
		ID:            userIDFromContext(c),
		Role:          userRoleFromContext(c),
		CorrelationID: middleware.GetCorrelationID(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if correlation := middleware.GetCorrelationID(c); correlation != "" {
		logger = base.With().Str("correlation_id", correlation).Logger()
	}
	return &logger
}

func invalidBody(c *fiber.Ctx) error {
	return utils.Fail(c, fiber.StatusBadRequest, "invalid request body", nil)
}

func invalidIdentifier(c *fiber.Ctx) error {
	return utils.Fail(c, fiber.StatusBadRequest, "invalid identifier", nil)
}
