package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_BackendConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("BACKEND_API_URL", "http://test-backend/api")
	os.Setenv("BACKEND_TIMEOUT_SECONDS", "3")
	defer func() {
		os.Unsetenv("BACKEND_API_URL")
		os.Unsetenv("BACKEND_TIMEOUT_SECONDS")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify backend config
	assert.Equal(t, "http://test-backend/api", cfg.Backend.BaseURL)
	assert.Equal(t, float64(3), cfg.Backend.Timeout.Seconds())
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("BACKEND_API_URL")
	os.Unsetenv("SESSION_COOKIE_NAME")
	os.Unsetenv("CATEGORY_EXCLUSIONS")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, "http://proxy/api", cfg.Backend.BaseURL)
	assert.Equal(t, "habitat_admin_token", cfg.Site.SessionCookie)
	assert.Equal(t, []string{"Galpón"}, cfg.Site.CategoryExclusions)
	assert.InDelta(t, 10.489, cfg.Site.FallbackLatitude, 0.0001)
	assert.InDelta(t, -66.879, cfg.Site.FallbackLongitude, 0.0001)
}

func TestLoad_CategoryExclusions(t *testing.T) {
	os.Setenv("CATEGORY_EXCLUSIONS", "Galpón, Terreno")
	defer os.Unsetenv("CATEGORY_EXCLUSIONS")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, []string{"Galpón", "Terreno"}, cfg.Site.CategoryExclusions)
}
