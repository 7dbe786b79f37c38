package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"LAB_APP_NAME":                os.Getenv("LAB_APP_NAME"),
		"LAB_APP_ENV":                 os.Getenv("LAB_APP_ENV"),
		"LAB_APP_PORT":                os.Getenv("LAB_APP_PORT"),
		"LAB_DATABASE_DRIVER":         os.Getenv("LAB_DATABASE_DRIVER"),
		"LAB_DATABASE_HOST":           os.Getenv("LAB_DATABASE_HOST"),
		"LAB_DATABASE_PORT":           os.Getenv("LAB_DATABASE_PORT"),
		"LAB_DATABASE_USER":           os.Getenv("LAB_DATABASE_USER"),
		"LAB_DATABASE_PASSWORD":       os.Getenv("LAB_DATABASE_PASSWORD"),
		"LAB_DATABASE_DBNAME":         os.Getenv("LAB_DATABASE_DBNAME"),
		"LAB_DATABASE_SSLMODE":        os.Getenv("LAB_DATABASE_SSLMODE"),
		"LAB_DATABASE_MAX_OPEN_CONNS": os.Getenv("LAB_DATABASE_MAX_OPEN_CONNS"),
		"LAB_DATABASE_MAX_IDLE_CONNS": os.Getenv("LAB_DATABASE_MAX_IDLE_CONNS"),
		"LAB_NOTIFIER_INTERVAL":       os.Getenv("LAB_NOTIFIER_INTERVAL"),
		"LAB_MAIL_ENABLED":            os.Getenv("LAB_MAIL_ENABLED"),
		"LAB_MAIL_HOST":               os.Getenv("LAB_MAIL_HOST"),
		"LAB_JWT_SECRET":              os.Getenv("LAB_JWT_SECRET"),
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

		assert.Equal(t, "labstock-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "labstock", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 6*time.Hour, cfg.Notifier.Interval)
		assert.False(t, cfg.Mail.Enabled)
	})

	t.Run("loads values from environment variables with LAB prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("LAB_APP_NAME", "test-app")
		os.Setenv("LAB_APP_PORT", "9000")
		os.Setenv("LAB_DATABASE_HOST", "testdb.local")
		os.Setenv("LAB_DATABASE_PORT", "5433")
		os.Setenv("LAB_DATABASE_PASSWORD", "testpass")
		os.Setenv("LAB_NOTIFIER_INTERVAL", "2h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 2*time.Hour, cfg.Notifier.Interval)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("LAB_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("LAB_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("LAB_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("mail enabled requires host and recipients", func(t *testing.T) {
		clearEnv()
		os.Setenv("LAB_MAIL_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mail.host")
	})

	t.Run("production requires jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("LAB_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestDSN(t *testing.T) {
	t.Run("postgres DSN escapes credentials", func(t *testing.T) {
		d := DatabaseConfig{
			Driver: "postgres", Host: "db.local", Port: 5432,
			User: "lab", Password: "p@ss/word", DBName: "labstock", SSLMode: "require",
		}

		dsn := d.DSN()

		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "db.local:5432")
		assert.Contains(t, dsn, "sslmode=require")
		assert.NotContains(t, dsn, "p@ss/word")
	})

	t.Run("sqlite DSN is the file path", func(t *testing.T) {
		d := DatabaseConfig{Driver: "sqlite", SQLitePath: "lab.db"}
		assert.Equal(t, "lab.db", d.DSN())
	})
}
