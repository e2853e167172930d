package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduportal-api/internal/middleware"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/service"
	"github.com/noah-isme/eduportal-api/internal/utils"
)

func identityFromContext(c *fiber.Ctx) (models.Identity, bool) {
	id, _ := c.Locals("user_id").(string)
	if strings.TrimSpace(id) == "" {
		return models.Identity{}, false
	}

	roleValue, _ := c.Locals("user_role").(string)
	role, ok := models.ParseRole(roleValue)
	if !ok {
		return models.Identity{}, false
	}

	name, _ := c.Locals("user_name").(string)
	sessionID, _ := c.Locals("session_id").(string)

	return models.Identity{ID: id, Name: name, Role: role, SessionID: sessionID}, true
}

func unauthorized(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseOptionalUintQuery(c *fiber.Ctx, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return nil, errors.New("invalid " + name)
	}
	value := uint(parsed)
	return &value, nil
}

func requestLogger(c *fiber.Ctx, logger zerolog.Logger) zerolog.Logger {
	if correlationID := middleware.GetCorrelationID(c); correlationID != "" {
		return logger.With().Str("correlation_id", correlationID).Logger()
	}
	return logger
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var (
		validationErrors validator.ValidationErrors
		captchaErr       *service.CaptchaError
	)

	switch {
	case errors.As(err, &captchaErr):
		return utils.SendErrorWithData(c, fiber.StatusUnauthorized, captchaErr.Error(), challengeResponse(captchaErr.Next))
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrValidation):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotEnrolled), errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrArtifactTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrArtifactTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrArtifactScanFailed):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		return internalError(c, logger, err)
	}
}

func internalError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	log := requestLogger(c, logger)
	log.Error().Err(err).Str("path", c.Path()).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
