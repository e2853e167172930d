package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/utils"
)

// SessionResolver maps a session id carried in a token back to a live identity.
type SessionResolver interface {
	Session(ctx context.Context, sessionID string) (models.Identity, error)
}

// JWTProtected validates HS256 bearer tokens and, when sessions is set, requires the
// token's session to still be open. The identity lands in user_id, user_role, user_name
// and session_id locals.
func JWTProtected(secret string, sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		identity, err := identityFromClaims(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		if sessions != nil {
			live, err := sessions.Session(c.UserContext(), identity.SessionID)
			if err != nil {
				return utils.SendError(c, fiber.StatusUnauthorized, "session expired or revoked")
			}
			if live.ID != identity.ID || live.Role != identity.Role {
				return utils.SendError(c, fiber.StatusUnauthorized, "session does not match token")
			}
			identity.Name = live.Name
		}

		c.Locals("user_id", identity.ID)
		c.Locals("user_role", string(identity.Role))
		c.Locals("user_name", identity.Name)
		c.Locals("session_id", identity.SessionID)

		return c.Next()
	}
}

func identityFromClaims(claims jwt.MapClaims) (models.Identity, error) {
	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return models.Identity{}, errors.New("token subject missing")
	}

	roleValue, _ := claims["role"].(string)
	role, ok := models.ParseRole(roleValue)
	if !ok {
		return models.Identity{}, errors.New("token role invalid")
	}

	sessionID, _ := claims["sid"].(string)
	if strings.TrimSpace(sessionID) == "" {
		return models.Identity{}, errors.New("token session missing")
	}

	name, _ := claims["name"].(string)

	return models.Identity{ID: subject, Name: name, Role: role, SessionID: sessionID}, nil
}
