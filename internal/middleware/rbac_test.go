package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/models"
)

func newRoleApp(role interface{}, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role != nil {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	app.Use(guard)
	app.Get("/staff", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	app := newRoleApp("Admin", RequireRole(models.RoleFaculty, models.RoleAdmin))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	app := newRoleApp("student", RequireStaff())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	app := newRoleApp(nil, RequireStaff())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
