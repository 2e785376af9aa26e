package apperrors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatusAndSentinel(t *testing.T) {
	cases := []struct {
		err      *AppError
		status   int
		sentinel error
	}{
		{BadRequest("bad"), http.StatusBadRequest, ErrInvalidInput},
		{Unauthorized("nope"), http.StatusUnauthorized, ErrUnauthorized},
		{Forbidden("no"), http.StatusForbidden, ErrForbidden},
		{NotFound("gone"), http.StatusNotFound, ErrNotFound},
		{Conflict("dup"), http.StatusConflict, ErrAlreadyExists},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status)
		assert.ErrorIs(t, tc.err, tc.sentinel)
	}
}

func errorBody(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error { return err })

	resp, reqErr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, reqErr)

	raw, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestErrorHandlerEnvelope(t *testing.T) {
	status, body := errorBody(t, NotFound("service not found"))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "service not found", body["message"])

	// Details are merged into the envelope at the top level.
	status, body = errorBody(t, Forbidden("verification required").
		WithDetails(map[string]interface{}{"kyc_required": true}))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, true, body["kyc_required"])

	status, body = errorBody(t, fiber.NewError(fiber.StatusTeapot, "short and stout"))
	assert.Equal(t, fiber.StatusTeapot, status)
	assert.Equal(t, "short and stout", body["message"])

	// Unknown errors never leak their text.
	status, body = errorBody(t, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["message"])
}
