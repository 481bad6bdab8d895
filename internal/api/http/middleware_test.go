package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/travel-approval/pkg/util"
)

func TestRequestTimeoutReachesHandlerContext(t *testing.T) {
	app := fiber.New()
	app.Use(requestTimeoutMiddleware(2 * time.Second))

	var hadDeadline bool
	app.Get("/requests", func(c *fiber.Ctx) error {
		// Handlers hand c.UserContext() to the services, so the deadline
		// must live there.
		_, hadDeadline = c.UserContext().Deadline()
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/requests", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.True(t, hadDeadline)
}

func TestErrorMiddlewareRendersDomainErrorEnvelope(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, time.Second)
	app.Get("/requests/:id", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("travel request", map[string]any{"id": c.Params("id")})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/requests/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "nope", body.Error.Details["id"])
}
