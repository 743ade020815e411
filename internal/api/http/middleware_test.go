package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestRequestTimeoutReachesUserContext(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)

	var hasDeadline bool
	app.Get("/probe-ctx", func(c *fiber.Ctx) error {
		// Handlers hand c.UserContext() to services, so the deadline must
		// live there.
		_, hasDeadline = c.UserContext().Deadline()
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/probe-ctx", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, hasDeadline)
}

func TestErrorMiddlewareRendersUniformBody(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	app.Get("/boom", func(c *fiber.Ctx) error {
		return util.NewFieldError("VALIDATION_ERROR", "status", "invalid status")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("unexpected")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	require.Equal(t, "status", body.Error.Field)

	resp, err = app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
