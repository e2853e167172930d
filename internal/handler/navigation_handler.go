package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduportal-api/internal/service"
	"github.com/noah-isme/eduportal-api/internal/utils"
)

// NavigationHandler serves the navigation rail and routed views.
type NavigationHandler struct {
	navigation service.NavigationService
	views      service.ViewService
	profiles   service.ProfileService
	logger     zerolog.Logger
}

// NewNavigationHandler constructs the handler.
func NewNavigationHandler(navigation service.NavigationService, views service.ViewService, profiles service.ProfileService, logger zerolog.Logger) *NavigationHandler {
	return &NavigationHandler{
		navigation: navigation,
		views:      views,
		profiles:   profiles,
		logger:     logger.With().Str("component", "navigation_handler").Logger(),
	}
}

// Register attaches navigation endpoints.
func (h *NavigationHandler) Register(router fiber.Router) {
	router.Get("/navigation", h.rail)
	router.Get("/views/:view", h.view)
	router.Get("/profile", h.profile)
}

func (h *NavigationHandler) rail(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	response, err := h.navigation.Navigation(c.UserContext(), identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "navigation retrieved", response)
}

func (h *NavigationHandler) view(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	response, err := h.views.Render(c.UserContext(), identity, c.Params("view"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "view rendered", response)
}

func (h *NavigationHandler) profile(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	response, err := h.profiles.Profile(c.UserContext(), identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "profile retrieved", response)
}
