package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/service"
	"github.com/noah-isme/eduportal-api/internal/utils"
)

// CatalogHandler serves courses, rosters, materials and the library.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// Register attaches catalog endpoints. staff guards roster access.
func (h *CatalogHandler) Register(router fiber.Router, staff fiber.Handler) {
	router.Get("/courses", h.listCourses)
	router.Get("/courses/:id", h.getCourse)
	router.Get("/courses/:id/roster", staff, h.roster)
	router.Get("/courses/:id/materials", h.materials)
	router.Get("/workbooks", h.workbooks)
	router.Get("/library/books", h.books)
}

func (h *CatalogHandler) listCourses(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	courses, err := h.service.ListCourses(c.UserContext(), identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CatalogHandler) getCourse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.service.GetCourse(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CatalogHandler) roster(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	roster, err := h.service.Roster(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "roster retrieved", roster)
}

func (h *CatalogHandler) materials(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	materials, err := h.service.ListMaterials(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "materials retrieved", materials)
}

func (h *CatalogHandler) workbooks(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	courseID, err := parseOptionalUintQuery(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Workbooks(c.UserContext(), identity, courseID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "workbooks retrieved", response)
}

func (h *CatalogHandler) books(c *fiber.Ctx) error {
	var filter dto.BookFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	books, err := h.service.ListBooks(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "books retrieved", books)
}
