package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gym/internal/services"
	"gym/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		echoed   bool
		contains string
	}{
		{"Validation", fmt.Errorf("%w: username is taken", services.ErrValidation), http.StatusBadRequest, true, "username is taken"},
		{"NotFound", fmt.Errorf("%w: trainer eva.fox", services.ErrNotFound), http.StatusNotFound, true, "trainer eva.fox"},
		{"Authentication", fmt.Errorf("%w: session has ended", services.ErrAuthentication), http.StatusUnauthorized, true, "session has ended"},
		{"Forbidden", errForbidden, http.StatusForbidden, true, "forbidden"},
		{"Internal", errors.New("pq: connection refused"), http.StatusInternalServerError, false, "pq: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, logger.Discard(), "Failed to load profile", tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, string(body), "Failed to load profile")
			if tt.echoed {
				assert.Contains(t, string(body), tt.contains)
			} else {
				assert.NotContains(t, string(body), tt.contains)
			}
		})
	}
}
