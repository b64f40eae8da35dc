package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopadmin/internal/config"
	"shopadmin/internal/database"
)

// setTestEnv points configuration at a throwaway SQLite file.
func setTestEnv(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "shopadmin.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", dsn)
	t.Setenv("JWT_SECRET", "test_jwt_secret")
	t.Setenv("MAIL_DRIVER", "log")
	t.Setenv("REVOCATION_STORE", "database")
	return dsn
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestServerStartupAndHealthCheck(t *testing.T) {
	setTestEnv(t)
	cfg, err := config.Load()
	require.NoError(t, err)

	app, err := newApplication(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.close()
	require.NoError(t, database.Migrate(app.db))

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := app.fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `"status":"healthy"`)
	})

	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		resp, err := app.fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "Expected Unauthorized for /products without token")
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := app.fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "shopadmin_http_requests_total")
	})
}

func TestCLI_MigrateAndCreateSuperuser(t *testing.T) {
	setTestEnv(t)

	_, err := runCLI(t, "migrate")
	require.NoError(t, err)

	out, err := runCLI(t, "createsuperuser", "--email", "Admin@Example.com", "--password", "Adm1n!pass")
	require.NoError(t, err)
	assert.Contains(t, out, "Superuser admin@example.com created")

	out, err = runCLI(t, "createsuperuser", "--email", "admin@example.com", "--password", "Adm1n!pass2")
	require.NoError(t, err)
	assert.Contains(t, out, "promoted")

	_, err = runCLI(t, "createsuperuser", "--email", "admin@example.com")
	assert.Error(t, err)

	_, err = runCLI(t, "createsuperuser", "--email", "weak@example.com", "--password", "weak")
	assert.Error(t, err)
}

func TestNewApplication_RejectsUnreachableRedis(t *testing.T) {
	setTestEnv(t)
	t.Setenv("REVOCATION_STORE", "redis")
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")
	cfg, err := config.Load()
	require.NoError(t, err)

	_, err = newApplication(cfg, zap.NewNop())
	assert.Error(t, err)
}
