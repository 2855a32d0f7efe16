// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port. Matches the port the
	// contact form frontend has always posted to.
	DefaultServerPort = 3000

	// DefaultMaxRequestSize is the default maximum request body size (100KiB).
	DefaultMaxRequestSize = 100 << 10

	// DefaultSMTPPort is the STARTTLS submission port.
	DefaultSMTPPort = 587

	// DefaultDispatchWorkers is the number of notification workers.
	DefaultDispatchWorkers = 2

	// DefaultDispatchQueueSize is the capacity of the notification queue.
	DefaultDispatchQueueSize = 100

	// DefaultBreakerMaxFailures is the consecutive send failures before the mail circuit opens.
	DefaultBreakerMaxFailures = 5

	// DefaultBreakerHalfOpenLimit is the successes needed to close the mail circuit.
	DefaultBreakerHalfOpenLimit = 1

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Mail provider names.
const (
	MailProviderSMTP    = "smtp"
	MailProviderMailgun = "mailgun"
	MailProviderLog     = "log"
)

// Config is the root configuration structure.
type Config struct {
	App        AppConfig        `koanf:"app"        validate:"required"`
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Log        LogConfig        `koanf:"log"        validate:"required"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	CORS       CORSConfig       `koanf:"cors"`
	Submission SubmissionConfig `koanf:"submission"`
	Mongo      MongoConfig      `koanf:"mongo"      validate:"required"`
	Mail       MailConfig       `koanf:"mail"       validate:"required"`
	Dispatch   DispatchConfig   `koanf:"dispatch"   validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`

	// Mode is the gin mode (debug, release, test). Empty means release.
	Mode string `koanf:"mode" validate:"omitempty,oneof=debug release test"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
	Insecure     bool    `koanf:"insecure"`
}

// CORSConfig controls cross-origin access to the form endpoint.
type CORSConfig struct {
	AllowOrigins []string `koanf:"allow_origins" validate:"dive,eq=*|http_url"`
}

// SubmissionConfig controls how contact submissions are accepted.
type SubmissionConfig struct {
	// Strict enables field validation (valid email, non-empty message).
	// Off by default: any body is accepted and stored as-is.
	Strict bool `koanf:"strict"`
}

// MongoConfig contains document store settings.
type MongoConfig struct {
	// URI may be empty; the connect failure is logged at startup.
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"        validate:"required"`
	Collection     string        `koanf:"collection"      validate:"required"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"required,min=100ms"`
	WriteTimeout   time.Duration `koanf:"write_timeout"   validate:"required,min=100ms"`
}

// MailConfig contains notification mail settings.
type MailConfig struct {
	Provider string `koanf:"provider" validate:"required,oneof=smtp mailgun log"`

	// User is the administrator mailbox login. It doubles as sender and
	// recipient unless AdminAddress is set.
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// AdminAddress overrides User as the From/To address.
	AdminAddress string `koanf:"admin_address" validate:"omitempty,email"`

	SMTP    SMTPConfig           `koanf:"smtp"`
	Mailgun MailgunConfig        `koanf:"mailgun"`
	Breaker CircuitBreakerConfig `koanf:"breaker" validate:"required"`
}

// Address returns the administrator mailbox used as both sender and recipient.
func (m MailConfig) Address() string {
	if m.AdminAddress != "" {
		return m.AdminAddress
	}

	return m.User
}

// SMTPConfig contains SMTP relay settings.
type SMTPConfig struct {
	Host    string        `koanf:"host"    validate:"required"`
	Port    int           `koanf:"port"    validate:"required,min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"required,min=1s"`
}

// MailgunConfig contains Mailgun API settings.
type MailgunConfig struct {
	Domain string `koanf:"domain"`
	APIKey string `koanf:"api_key"`
}

// CircuitBreakerConfig contains circuit breaker settings for the mail relay.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// DispatchConfig contains background notification queue settings.
type DispatchConfig struct {
	Workers     int           `koanf:"workers"      validate:"required,min=1,max=64"`
	QueueSize   int           `koanf:"queue_size"   validate:"required,min=1"`
	SendTimeout time.Duration `koanf:"send_timeout" validate:"required,min=1s"`
}

// legacyEnv maps the environment variables the service has always read
// to their config keys. They take precedence over APP_ variables.
var legacyEnv = map[string]string{
	"MONGO_URI":  "mongo.uri",
	"EMAIL_USER": "mail.user",
	"EMAIL_PASS": "mail.password",
	"PORT":       "server.port",
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "contact-form-service",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "15s",
		"server.max_request_size": DefaultMaxRequestSize,
		"server.mode":             "release",

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "contact-form-service",
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"cors.allow_origins": []string{"*"},

		"submission.strict": false,

		"mongo.uri":             "",
		"mongo.database":        "contactform",
		"mongo.collection":      "contacts",
		"mongo.connect_timeout": "10s",
		"mongo.write_timeout":   "10s",

		"mail.provider":                "smtp",
		"mail.user":                    "",
		"mail.password":                "",
		"mail.admin_address":           "",
		"mail.smtp.host":               "smtp.gmail.com",
		"mail.smtp.port":               DefaultSMTPPort,
		"mail.smtp.timeout":            "15s",
		"mail.mailgun.domain":          "",
		"mail.mailgun.api_key":         "",
		"mail.breaker.max_failures":    DefaultBreakerMaxFailures,
		"mail.breaker.timeout":         "60s",
		"mail.breaker.half_open_limit": DefaultBreakerHalfOpenLimit,

		"dispatch.workers":      DefaultDispatchWorkers,
		"dispatch.queue_size":   DefaultDispatchQueueSize,
		"dispatch.send_timeout": "30s",
	}
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables that are already set are left untouched. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Legacy environment variables (MONGO_URI, EMAIL_USER, EMAIL_PASS, PORT)
//  2. Environment variables (APP_ prefix, "__" separates nesting, e.g. APP_MAIL__SMTP__HOST)
//  3. Profile config file (configs/{profile}.yaml)
//  4. Base config file (configs/base.yaml)
//  5. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider("APP_", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// 5. Load legacy variables
	err = k.Load(env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading legacy env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey converts APP_MAIL__SMTP__HOST to mail.smtp.host and
// APP_MONGO__WRITE_TIMEOUT to mongo.write_timeout.
func envKey(s string) string {
	return strings.ReplaceAll(
		strings.ToLower(strings.TrimPrefix(s, "APP_")),
		"__",
		".",
	)
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
