package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/observability"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

// Challenge is an arithmetic question shown on the login form.
type Challenge struct {
	ID        string    `json:"challenge_id"`
	Question  string    `json:"question"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService gates entry to the portal with a captcha and manages sessions.
type AuthService interface {
	NewChallenge(ctx context.Context) (Challenge, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Session(ctx context.Context, sessionID string) (models.Identity, error)
}

// AuthConfig carries token and expiry settings.
type AuthConfig struct {
	Secret     string
	SessionTTL time.Duration
	CaptchaTTL time.Duration
}

type authService struct {
	captchas  CaptchaStore
	sessions  SessionStore
	roster    repository.RosterRepository
	validator *validator.Validate
	cfg       AuthConfig
	logger    zerolog.Logger
	now       func() time.Time
	intn      func(n int) int
}

// NewAuthService constructs the login gate.
func NewAuthService(captchas CaptchaStore, sessions SessionStore, roster repository.RosterRepository, validate *validator.Validate, cfg AuthConfig, logger zerolog.Logger) AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.CaptchaTTL <= 0 {
		cfg.CaptchaTTL = 5 * time.Minute
	}

	return &authService{
		captchas:  captchas,
		sessions:  sessions,
		roster:    roster,
		validator: validate,
		cfg:       cfg,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
		intn:      rand.IntN,
	}
}

// NewChallenge draws two operands in 1..9 and a + or - operator.
func (s *authService) NewChallenge(ctx context.Context) (Challenge, error) {
	a := s.intn(9) + 1
	b := s.intn(9) + 1

	op := "+"
	expected := a + b
	if s.intn(2) == 1 {
		op = "-"
		expected = a - b
	}

	challenge := Challenge{
		ID:        uuid.NewString(),
		Question:  fmt.Sprintf("%d %s %d = ?", a, op, b),
		ExpiresAt: s.now().Add(s.cfg.CaptchaTTL).UTC(),
	}

	if err := s.captchas.Save(ctx, challenge.ID, expected, s.cfg.CaptchaTTL); err != nil {
		return Challenge{}, fmt.Errorf("failed to store captcha: %w", err)
	}
	return challenge, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	payload.UserID = strings.TrimSpace(payload.UserID)
	payload.Role = strings.ToLower(strings.TrimSpace(payload.Role))
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	role, ok := models.ParseRole(payload.Role)
	if !ok {
		return dto.LoginResponse{}, fmt.Errorf("%w: unknown role %q", ErrValidation, payload.Role)
	}

	expected, found, err := s.captchas.Take(ctx, payload.ChallengeID)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("failed to read captcha: %w", err)
	}
	if !found || strings.TrimSpace(payload.CaptchaAnswer) != strconv.Itoa(expected) {
		observability.LoginAttempts().WithLabelValues(string(role), "captcha_mismatch").Inc()
		next, err := s.NewChallenge(ctx)
		if err != nil {
			return dto.LoginResponse{}, err
		}
		return dto.LoginResponse{}, &CaptchaError{Next: next}
	}

	identity := models.Identity{
		ID:   payload.UserID,
		Name: s.displayName(ctx, payload.UserID, role),
		Role: role,
	}

	issuedAt := s.now().UTC()
	session := Session{
		ID:        uuid.NewString(),
		UserID:    identity.ID,
		Name:      identity.Name,
		Role:      identity.Role,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Open(ctx, session); err != nil {
		return dto.LoginResponse{}, fmt.Errorf("failed to open session: %w", err)
	}

	token, err := s.issueToken(session)
	if err != nil {
		_ = s.sessions.Revoke(ctx, session.ID)
		return dto.LoginResponse{}, err
	}

	observability.LoginAttempts().WithLabelValues(string(role), "success").Inc()
	s.logger.Info().Str("user_id", identity.ID).Str("role", string(role)).Msg("login succeeded")

	return dto.LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Identity: dto.IdentityResponse{
			ID:   identity.ID,
			Name: identity.Name,
			Role: string(identity.Role),
		},
		DefaultView: DefaultView,
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionNotFound
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", sessionID).Msg("session revoked")
	return nil
}

// Session resolves a live session back to its identity.
func (s *authService) Session(ctx context.Context, sessionID string) (models.Identity, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{
		ID:        session.UserID,
		Name:      session.Name,
		Role:      session.Role,
		SessionID: session.ID,
	}, nil
}

func (s *authService) displayName(ctx context.Context, userID string, role models.Role) string {
	fallback := fmt.Sprintf("%s User", role)
	if role != models.RoleStudent || s.roster == nil {
		return fallback
	}

	entry, err := s.roster.FindStudent(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to resolve student name")
		}
		return fallback
	}
	return entry.StudentName
}

func (s *authService) issueToken(session Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":  session.UserID,
		"role": string(session.Role),
		"name": session.Name,
		"sid":  session.ID,
		"iat":  session.IssuedAt.Unix(),
		"exp":  session.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
