package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"SYNC_APP_NAME":                os.Getenv("SYNC_APP_NAME"),
		"SYNC_APP_ENV":                 os.Getenv("SYNC_APP_ENV"),
		"SYNC_APP_PORT":                os.Getenv("SYNC_APP_PORT"),
		"SYNC_DATABASE_HOST":           os.Getenv("SYNC_DATABASE_HOST"),
		"SYNC_DATABASE_PORT":           os.Getenv("SYNC_DATABASE_PORT"),
		"SYNC_DATABASE_USER":           os.Getenv("SYNC_DATABASE_USER"),
		"SYNC_DATABASE_PASSWORD":       os.Getenv("SYNC_DATABASE_PASSWORD"),
		"SYNC_DATABASE_DBNAME":         os.Getenv("SYNC_DATABASE_DBNAME"),
		"SYNC_DATABASE_SSLMODE":        os.Getenv("SYNC_DATABASE_SSLMODE"),
		"SYNC_DATABASE_MAX_OPEN_CONNS": os.Getenv("SYNC_DATABASE_MAX_OPEN_CONNS"),
		"SYNC_DATABASE_MAX_IDLE_CONNS": os.Getenv("SYNC_DATABASE_MAX_IDLE_CONNS"),
		"SYNC_SYNC_SECRET":             os.Getenv("SYNC_SYNC_SECRET"),
		"SYNC_SYNC_RECORD_BATCH_SIZE":  os.Getenv("SYNC_SYNC_RECORD_BATCH_SIZE"),
		"SYNC_CRYPTO_CREDENTIAL_KEY":   os.Getenv("SYNC_CRYPTO_CREDENTIAL_KEY"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "catalog-sync", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "catalog", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	})

	t.Run("applies sync orchestration defaults", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 5, cfg.Sync.IntegrationBatchSize)
		assert.Equal(t, "1s", cfg.Sync.IntegrationBatchPause.String())
		assert.Equal(t, 20, cfg.Sync.RecordBatchSize)
		assert.Equal(t, "100ms", cfg.Sync.RecordBatchPause.String())
		assert.Equal(t, "15m0s", cfg.Sync.LockTTL.String())
		assert.Equal(t, "30s", cfg.Sync.ProviderTimeout.String())
		assert.False(t, cfg.Sync.CronEnabled)
		assert.Equal(t, "1h0m0s", cfg.Sync.CronInterval.String())
	})

	t.Run("loads values from environment variables with SYNC prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNC_APP_NAME", "test-app")
		os.Setenv("SYNC_APP_ENV", "testing")
		os.Setenv("SYNC_APP_PORT", "9000")
		os.Setenv("SYNC_DATABASE_HOST", "testdb.local")
		os.Setenv("SYNC_DATABASE_PORT", "5433")
		os.Setenv("SYNC_DATABASE_USER", "testuser")
		os.Setenv("SYNC_DATABASE_PASSWORD", "testpass")
		os.Setenv("SYNC_DATABASE_DBNAME", "testdb")
		os.Setenv("SYNC_DATABASE_SSLMODE", "require")
		os.Setenv("SYNC_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("SYNC_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("SYNC_SYNC_SECRET", "trigger-secret")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "trigger-secret", cfg.Sync.Secret)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNC_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("SYNC_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNC_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNC_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("validates RecordBatchSize cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNC_SYNC_RECORD_BATCH_SIZE", "-5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync.record_batch_size must be positive")
	})

	t.Run("validates credential key length", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNC_CRYPTO_CREDENTIAL_KEY", "too-short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "crypto.credential_key must be exactly 32 bytes")
	})

	t.Run("accepts a 32-byte credential key", func(t *testing.T) {
		clearEnv()
		os.Setenv("SYNC_CRYPTO_CREDENTIAL_KEY", "0123456789abcdef0123456789abcdef")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Len(t, cfg.Crypto.CredentialKey, 32)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"SYNC_APP_ENV":               os.Getenv("SYNC_APP_ENV"),
		"SYNC_SYNC_SECRET":           os.Getenv("SYNC_SYNC_SECRET"),
		"SYNC_CRYPTO_CREDENTIAL_KEY": os.Getenv("SYNC_CRYPTO_CREDENTIAL_KEY"),
		"SYNC_DATABASE_PASSWORD":     os.Getenv("SYNC_DATABASE_PASSWORD"),
		"SYNC_DATABASE_SSLMODE":      os.Getenv("SYNC_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	// Helper to set valid production base config
	setValidProductionBase := func() {
		os.Setenv("SYNC_APP_ENV", "production")
		os.Setenv("SYNC_SYNC_SECRET", "this-is-a-very-secure-sync-secret-32chars")
		os.Setenv("SYNC_CRYPTO_CREDENTIAL_KEY", "0123456789abcdef0123456789abcdef")
		os.Setenv("SYNC_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SYNC_DATABASE_SSLMODE", "require")
	}

	t.Run("requires sync.secret in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("SYNC_SYNC_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync.secret is required in production")
	})

	t.Run("requires sync.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("SYNC_SYNC_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync.secret must be at least 32 characters")
	})

	t.Run("requires crypto.credential_key in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("SYNC_CRYPTO_CREDENTIAL_KEY")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "crypto.credential_key is required in production")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("SYNC_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("SYNC_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
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
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
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

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
