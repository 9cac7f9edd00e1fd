package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// managedEnv lists every variable the tests touch; each test starts from blank values
var managedEnv = []string{
	"SHOP_APP_NAME",
	"SHOP_APP_ENV",
	"SHOP_APP_PORT",
	"SHOP_DATABASE_HOST",
	"SHOP_DATABASE_PORT",
	"SHOP_DATABASE_USER",
	"SHOP_DATABASE_PASSWORD",
	"SHOP_DATABASE_DBNAME",
	"SHOP_DATABASE_SSLMODE",
	"SHOP_DATABASE_MAX_OPEN_CONNS",
	"SHOP_DATABASE_MAX_IDLE_CONNS",
	"SHOP_JWT_SECRET",
	"SHOP_STORAGE_DRIVER",
	"SHOP_CACHE_ENABLED",
	"SHOP_INVOICE_DIR",
	"SHOP_INVOICE_CHUNK_SIZE",
	"SHOP_HTTP_CORS_ALLOW_ORIGINS",
	"SHOP_TELEMETRY_SAMPLING_RATIO",
	"SHOP_TELEMETRY_PROFILING_ENABLED",
	"SHOP_TELEMETRY_PYROSCOPE_ADDRESS",
}

func withEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
	}
	for k, v := range values {
		t.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		withEnv(t, nil)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "local", cfg.Storage.Driver)
		assert.True(t, cfg.Storage.UsePathStyle)
		assert.True(t, cfg.Cache.Enabled)
		assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
		assert.Equal(t, "invoices", cfg.Invoice.Dir)
		assert.Equal(t, 32<<10, cfg.Invoice.ChunkSize)
		assert.Equal(t, "storefront-backend", cfg.Telemetry.ServiceName)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.True(t, cfg.Telemetry.Insecure)
		assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	})

	t.Run("loads values from environment variables with SHOP prefix", func(t *testing.T) {
		withEnv(t, map[string]string{
			"SHOP_APP_NAME":                "test-app",
			"SHOP_APP_PORT":                "9000",
			"SHOP_DATABASE_HOST":           "testdb.local",
			"SHOP_DATABASE_PORT":           "5433",
			"SHOP_DATABASE_PASSWORD":       "testpass",
			"SHOP_DATABASE_MAX_OPEN_CONNS": "50",
			"SHOP_DATABASE_MAX_IDLE_CONNS": "10",
			"SHOP_CACHE_ENABLED":           "false",
			"SHOP_INVOICE_DIR":             "/var/invoices",
		})

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Cache.Enabled)
		assert.Equal(t, "/var/invoices", cfg.Invoice.Dir)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		withEnv(t, map[string]string{
			"SHOP_DATABASE_MAX_OPEN_CONNS": "10",
			"SHOP_DATABASE_MAX_IDLE_CONNS": "20",
		})

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown storage driver", func(t *testing.T) {
		withEnv(t, map[string]string{"SHOP_STORAGE_DRIVER": "ftp"})

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.driver")
	})

	t.Run("rejects negative chunk size", func(t *testing.T) {
		withEnv(t, map[string]string{"SHOP_INVOICE_CHUNK_SIZE": "-1"})

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chunk_size")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		withEnv(t, map[string]string{"SHOP_TELEMETRY_SAMPLING_RATIO": "1.5"})

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("profiling needs a pyroscope address", func(t *testing.T) {
		withEnv(t, map[string]string{"SHOP_TELEMETRY_PROFILING_ENABLED": "true"})

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pyroscope_address")

		withEnv(t, map[string]string{
			"SHOP_TELEMETRY_PROFILING_ENABLED": "true",
			"SHOP_TELEMETRY_PYROSCOPE_ADDRESS": "http://pyroscope:4040",
		})
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Telemetry.ProfilingEnabled)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	validProduction := func() map[string]string {
		return map[string]string{
			"SHOP_APP_ENV":           "production",
			"SHOP_JWT_SECRET":        "this-is-a-very-secure-jwt-secret-key-32chars",
			"SHOP_DATABASE_PASSWORD": "secure-password",
			"SHOP_DATABASE_SSLMODE":  "require",
			"SHOP_STORAGE_DRIVER":    "s3",
		}
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		withEnv(t, validProduction())

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	tests := []struct {
		name    string
		mutate  func(env map[string]string)
		wantErr string
	}{
		{"requires jwt.secret", func(env map[string]string) { delete(env, "SHOP_JWT_SECRET") }, "jwt.secret is required"},
		{"requires long jwt.secret", func(env map[string]string) { env["SHOP_JWT_SECRET"] = "short" }, "at least 32 characters"},
		{"requires database.password", func(env map[string]string) { delete(env, "SHOP_DATABASE_PASSWORD") }, "database.password is required"},
		{"requires SSL", func(env map[string]string) { env["SHOP_DATABASE_SSLMODE"] = "disable" }, "sslmode cannot be 'disable'"},
		{"requires s3 storage", func(env map[string]string) { env["SHOP_STORAGE_DRIVER"] = "local" }, "must be 's3' in production"},
		{"rejects wildcard CORS", func(env map[string]string) { env["SHOP_HTTP_CORS_ALLOW_ORIGINS"] = "*" }, "cannot be '*'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validProduction()
			tt.mutate(env)
			withEnv(t, env)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
