package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eduportal-api/internal/config"
	"github.com/noah-isme/eduportal-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Cache       string    `json:"cache"`
	Events      string    `json:"events"`
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config) fiber.Handler {
	cache := "memory"
	if cfg.RedisURL != "" {
		cache = "redis"
	}
	events := "log"
	if cfg.NATSURL != "" {
		events = "nats"
	}

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Cache:       cache,
			Events:      events,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
