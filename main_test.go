package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym/internal/config"
	"gym/internal/database"
	"gym/internal/models"
	"gym/internal/services"
	"gym/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		AppPort: ":8081",
		Env:     "test",
		DB: config.DBConfig{
			Driver:            "sqlite",
			DSN:               database.MemoryDSN(t.Name()),
			SeedTrainingTypes: true,
		},
		JWTSecret:  "test_jwt_secret",
		SessionTTL: time.Hour,
		BcryptCost: 4,
	}
}

func TestServerStartupAndHealthCheck(t *testing.T) {
	cfg := testConfig(t)
	db, err := database.Open(cfg.DB)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	app, err := newApp(cfg, db, nil, logger.Discard())
	require.NoError(t, err)

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, false, body["events"])
	})

	t.Run("SeededTrainingTypes", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/training-types", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var types []models.TrainingType
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&types))
		assert.Len(t, types, len(services.DefaultTrainingTypes))
	})

	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		for _, path := range []string{"/api/v1/trainees/anna.bell", "/api/v1/trainers/eva.fox"} {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		}
	})

	t.Run("RequestIDHeader", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})
}

func TestNewAppSeedsOnce(t *testing.T) {
	cfg := testConfig(t)
	db, err := database.Open(cfg.DB)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	_, err = newApp(cfg, db, nil, logger.Discard())
	require.NoError(t, err)
	_, err = newApp(cfg, db, nil, logger.Discard())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.TrainingType{}).Count(&count).Error)
	assert.Equal(t, int64(len(services.DefaultTrainingTypes)), count)
}
