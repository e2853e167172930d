package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/observability"
)

func TestMetricsHandlerExposesPortalCollectors(t *testing.T) {
	app := fiber.New()
	app.Get("/metrics", observability.MetricsHandler())

	observability.LoginAttempts().WithLabelValues("student", "success").Inc()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "eduportal_login_attempts_total")
}
