package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduportal-api/internal/repository"
	"github.com/noah-isme/eduportal-api/internal/service"
	"github.com/noah-isme/eduportal-api/internal/utils"
)

// DashboardHandler serves the landing dashboard and the admin audit feed.
type DashboardHandler struct {
	dashboard service.DashboardService
	activity  service.ActivityService
	logger    zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard service.DashboardService, activity service.ActivityService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		activity:  activity,
		logger:    logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches dashboard endpoints. admin guards the audit feed.
func (h *DashboardHandler) Register(router fiber.Router, admin fiber.Handler) {
	router.Get("/dashboard", h.get)
	router.Get("/activity", admin, h.listActivity)
}

func (h *DashboardHandler) get(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	response, err := h.dashboard.Dashboard(c.UserContext(), identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", response)
}

func (h *DashboardHandler) listActivity(c *fiber.Ctx) error {
	filter := repository.ActivityLogFilter{
		ActorID:    c.Query("actor_id"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		Limit:      c.QueryInt("limit", 0),
	}

	entityID, err := parseOptionalUintQuery(c, "entity_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.EntityID = entityID

	entries, err := h.activity.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "activity retrieved", entries)
}
