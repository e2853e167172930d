package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/service"
	"github.com/noah-isme/eduportal-api/internal/utils"
)

// AuthHandler serves the login gate.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated endpoints. guard throttles login attempts.
func (h *AuthHandler) RegisterPublic(router fiber.Router, guard fiber.Handler) {
	router.Get("/captcha", h.captcha)
	router.Post("/login", guard, h.login)
}

// Register attaches endpoints that need an authenticated session.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/auth/logout", h.logout)
	router.Get("/me", h.me)
}

func (h *AuthHandler) captcha(c *fiber.Ctx) error {
	challenge, err := h.service.NewChallenge(c.UserContext())
	if err != nil {
		return internalError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "captcha issued", challengeResponse(challenge))
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.service.Logout(c.UserContext(), identity.SessionID); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "logged out", dto.LogoutResponse{DefaultView: service.DefaultView})
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	return utils.SendSuccess(c, "identity retrieved", dto.IdentityResponse{
		ID:   identity.ID,
		Name: identity.Name,
		Role: string(identity.Role),
	})
}

func challengeResponse(challenge service.Challenge) dto.CaptchaChallengeResponse {
	return dto.CaptchaChallengeResponse{
		ChallengeID: challenge.ID,
		Question:    challenge.Question,
		ExpiresAt:   challenge.ExpiresAt,
	}
}
