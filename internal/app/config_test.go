package app

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/inventory-admin/testing"
)

func testEnv(t *testing.T) {
	t.Helper()
	t.Setenv(TestModeEnv, "1")
	RefreshTestMode()
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("CSRF_SECRET", "csrf-s3cret")
}

func TestTestingImportSwitchesOnTestMode(t *testing.T) {
	assert.Equal(t, "1", os.Getenv(TestModeEnv))
	RefreshTestMode()
	assert.True(t, InTestMode())
}

func TestLoadConfigDefaults(t *testing.T) {
	testEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://127.0.0.1:8081/api/product-groups", cfg.Backends.ProductURL)
	assert.Equal(t, "http://127.0.0.1:8084/api/accounts", cfg.Backends.AccountURL)
	assert.Equal(t, 0, cfg.Backends.RetryMax, "retries are manual unless configured")
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	testEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("CATEGORY_API_URL", "http://categories.internal/api/categories")
	t.Setenv("BACKEND_TIMEOUT", "2s")
	t.Setenv("BACKEND_RETRY_MAX", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "http://categories.internal/api/categories", cfg.Backends.CategoryURL)
	assert.Equal(t, 2*time.Second, cfg.Backends.Timeout)
	assert.Equal(t, 2, cfg.Backends.RetryMax)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	testEnv(t)
	t.Setenv("CSRF_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsNegativeRetries(t *testing.T) {
	testEnv(t)
	t.Setenv("BACKEND_RETRY_MAX", "-1")

	_, err := LoadConfig()
	assert.Error(t, err)
}
