package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_DefaultValues tests that hardcoded defaults are applied correctly.
// This test doesn't depend on YAML files - it only tests the defaults() function.
func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "contact-form-service", cfg.App.Name)
	assert.Equal(t, "dev", cfg.App.Version)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, int64(100<<10), cfg.Server.MaxRequestSize)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Submission.Strict)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
}

// TestLoad_EnvVarOverrides tests that APP_ environment variables override defaults.
func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("APP_SERVER__PORT", "9090")
	t.Setenv("APP_LOG__LEVEL", "warn")
	t.Setenv("APP_MAIL__SMTP__HOST", "smtp.example.com")
	t.Setenv("APP_MONGO__WRITE_TIMEOUT", "3s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "smtp.example.com", cfg.Mail.SMTP.Host)
	assert.Equal(t, 3*time.Second, cfg.Mongo.WriteTimeout)
}

// TestLoad_LegacyEnvVars tests the unprefixed variables the service has always read.
func TestLoad_LegacyEnvVars(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db.internal:27017")
	t.Setenv("EMAIL_USER", "admin@example.com")
	t.Setenv("EMAIL_PASS", "app-password")
	t.Setenv("PORT", "8081")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db.internal:27017", cfg.Mongo.URI)
	assert.Equal(t, "admin@example.com", cfg.Mail.User)
	assert.Equal(t, "app-password", cfg.Mail.Password)
	assert.Equal(t, 8081, cfg.Server.Port)
}

// TestLoad_LegacyEnvVarsWin tests that legacy variables take precedence over APP_ ones.
func TestLoad_LegacyEnvVarsWin(t *testing.T) {
	t.Setenv("APP_MONGO__URI", "mongodb://from-app-prefix")
	t.Setenv("MONGO_URI", "mongodb://from-legacy")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mongodb://from-legacy", cfg.Mongo.URI)
}

// TestLoad_DurationParsing tests that duration strings are parsed correctly.
func TestLoad_DurationParsing(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Equal(t, 15*time.Second, cfg.Mail.SMTP.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Mail.Breaker.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Dispatch.SendTimeout)
}

// TestLoad_NonExistentProfile tests that a missing profile file doesn't cause errors.
func TestLoad_NonExistentProfile(t *testing.T) {
	cfg, err := Load("nonexistent")
	require.NoError(t, err)

	assert.Equal(t, "contact-form-service", cfg.App.Name)
}

// TestLoad_ProfileFile tests that a profile file overrides base and defaults.
func TestLoad_ProfileFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "base.yaml"),
		[]byte("mail:\n  provider: log\nmongo:\n  database: base-db\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "qa.yaml"),
		[]byte("mongo:\n  database: qa-db\nsubmission:\n  strict: true\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load("qa")
	require.NoError(t, err)

	assert.Equal(t, MailProviderLog, cfg.Mail.Provider)
	assert.Equal(t, "qa-db", cfg.Mongo.Database)
	assert.True(t, cfg.Submission.Strict)
}

// TestLoad_BoolEnvVar tests that boolean environment variables are parsed correctly.
func TestLoad_BoolEnvVar(t *testing.T) {
	t.Setenv("APP_TELEMETRY__ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Telemetry.Enabled)
}

// TestLoad_StoreAndMailDefaults tests the document store and relay defaults.
func TestLoad_StoreAndMailDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Mongo.URI)
	assert.Equal(t, "contactform", cfg.Mongo.Database)
	assert.Equal(t, "contacts", cfg.Mongo.Collection)
	assert.Equal(t, MailProviderSMTP, cfg.Mail.Provider)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.SMTP.Host)
	assert.Equal(t, DefaultSMTPPort, cfg.Mail.SMTP.Port)
	assert.Equal(t, DefaultBreakerMaxFailures, cfg.Mail.Breaker.MaxFailures)
	assert.Equal(t, DefaultBreakerHalfOpenLimit, cfg.Mail.Breaker.HalfOpenLimit)
	assert.Equal(t, DefaultDispatchWorkers, cfg.Dispatch.Workers)
	assert.Equal(t, DefaultDispatchQueueSize, cfg.Dispatch.QueueSize)
}

// TestLoad_LogFileDefaults tests that log file defaults are set correctly.
func TestLoad_LogFileDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Log.File.Enabled)
	assert.Equal(t, "./logs/app.log", cfg.Log.File.Path)
	assert.Equal(t, DefaultLogFileMaxSizeMB, cfg.Log.File.MaxSizeMB)
	assert.Equal(t, DefaultLogFileMaxBackups, cfg.Log.File.MaxBackups)
	assert.Equal(t, DefaultLogFileMaxAgeDays, cfg.Log.File.MaxAgeDays)
	assert.True(t, cfg.Log.File.Compress)
}

func TestMailConfig_Address(t *testing.T) {
	m := MailConfig{User: "login@example.com"}
	assert.Equal(t, "login@example.com", m.Address())

	m.AdminAddress = "admin@example.com"
	assert.Equal(t, "admin@example.com", m.Address())
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
		assert.NoError(t, err)
	})

	t.Run("file values are exported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("CONTACT_DOTENV_PROBE=from-file\n"), 0o600))
		t.Setenv("CONTACT_DOTENV_PROBE", "")
		require.NoError(t, os.Unsetenv("CONTACT_DOTENV_PROBE"))

		require.NoError(t, LoadDotEnv(path))
		assert.Equal(t, "from-file", os.Getenv("CONTACT_DOTENV_PROBE"))
	})

	t.Run("existing variables are not overwritten", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("CONTACT_DOTENV_KEEP=from-file\n"), 0o600))
		t.Setenv("CONTACT_DOTENV_KEEP", "from-shell")

		require.NoError(t, LoadDotEnv(path))
		assert.Equal(t, "from-shell", os.Getenv("CONTACT_DOTENV_KEEP"))
	})
}

// TestDefaults tests that the defaults map contains expected values.
func TestDefaults(t *testing.T) {
	d := defaults()

	assert.Equal(t, "contact-form-service", d["app.name"])
	assert.Equal(t, DefaultServerPort, d["server.port"])
	assert.Equal(t, "smtp", d["mail.provider"])
	assert.Equal(t, false, d["submission.strict"])
	assert.Equal(t, DefaultDispatchQueueSize, d["dispatch.queue_size"])
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("APP_SERVER__PORT"))
	assert.Equal(t, "mail.smtp.host", envKey("APP_MAIL__SMTP__HOST"))
	assert.Equal(t, "mongo.write_timeout", envKey("APP_MONGO__WRITE_TIMEOUT"))
}
