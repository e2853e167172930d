package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduportal-api/internal/service"
	"github.com/noah-isme/eduportal-api/internal/utils"
)

// ArtifactHandler accepts submission file uploads.
type ArtifactHandler struct {
	service service.ArtifactService
	logger  zerolog.Logger
}

// NewArtifactHandler constructs the handler.
func NewArtifactHandler(service service.ArtifactService, logger zerolog.Logger) *ArtifactHandler {
	return &ArtifactHandler{
		service: service,
		logger:  logger.With().Str("component", "artifact_handler").Logger(),
	}
}

// Register attaches the upload endpoints.
func (h *ArtifactHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.upload)
}

func (h *ArtifactHandler) list(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	uploads, err := h.service.List(c.UserContext(), identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "artifacts retrieved", uploads)
}

func (h *ArtifactHandler) upload(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	response, err := h.service.Store(c.UserContext(), identity, file)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "artifact stored", response)
}
