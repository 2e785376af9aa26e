package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paginationFor(t *testing.T, target string) Pagination {
	t.Helper()

	var pg Pagination
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		pg = ParsePagination(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return pg
}

func TestParsePagination(t *testing.T) {
	pg := paginationFor(t, "/")
	assert.Equal(t, Pagination{Page: 1, Limit: 20, Offset: 0}, pg)

	pg = paginationFor(t, "/?page=3&limit=5")
	assert.Equal(t, Pagination{Page: 3, Limit: 5, Offset: 10}, pg)

	// Garbage and non-positive values fall back to the defaults.
	pg = paginationFor(t, "/?page=abc&limit=-1")
	assert.Equal(t, Pagination{Page: 1, Limit: 20, Offset: 0}, pg)
}
