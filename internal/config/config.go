// Package config loads service configuration from environment variables.
// Every field carries its variable name and default in struct tags; Load
// fills them in and validates the result so misconfiguration fails at start.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Import    ImportConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Telemetry TelemetryConfig
	Audit     AuditConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds non-import requests in middleware.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL accepts DATABASE_URL or DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoMigrate applies the schema at server start.
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// ImportConfig holds CSV import settings.
type ImportConfig struct {
	// MaxFileSize is the largest accepted CSV in bytes (default: 20MB).
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is how many imports may run at once.
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long an import waits for a slot before rejection.
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds one import from parse to last write.
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"10m"`

	// StrictValidation leaves rows with error diagnostics out of the plan.
	StrictValidation bool `env:"IMPORT_STRICT_VALIDATION" default:"false"`

	// ArchiveUploads copies each imported CSV to object storage.
	ArchiveUploads bool `env:"IMPORT_ARCHIVE_UPLOADS" default:"false"`

	// PlanTTL is how long a previewed plan stays executable.
	PlanTTL time.Duration `env:"IMPORT_PLAN_TTL" default:"30m"`

	// MaxDownloadSize is the largest accepted download file in bytes (default: 200MB).
	MaxDownloadSize int64 `env:"DOWNLOAD_MAX_FILE_SIZE" default:"209715200"`
}

// RateLimitConfig holds per-client rate limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every route.
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ImportPerMinute applies to import and upload routes.
	ImportPerMinute int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For headers are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey protects the admin routes.
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"true"`

	// APIKeys is a comma-separated list of accepted admin keys.
	APIKeys []string `env:"API_KEYS"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level: debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format: text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// StorageConfig configures the S3-compatible bucket for downloads and
// archived imports. Storage is disabled when Bucket is empty.
type StorageConfig struct {
	Bucket          string `env:"S3_BUCKET"`
	Region          string `env:"S3_REGION" envAlt:"AWS_REGION" default:"us-east-1"`
	Endpoint        string `env:"S3_ENDPOINT"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" default:"false"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
}

// Enabled reports whether a bucket is configured.
func (c StorageConfig) Enabled() bool {
	return c.Bucket != ""
}

// CacheConfig configures the Redis plan cache. Plans stay in process memory
// when RedisAddr is empty.
type CacheConfig struct {
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" default:"0"`
	Timeout       time.Duration `env:"REDIS_TIMEOUT" default:"5s"`
}

// TelemetryConfig configures OTLP trace export. Export is off when
// Endpoint is empty.
type TelemetryConfig struct {
	Endpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName   string  `env:"OTEL_SERVICE_NAME" default:"virex-catalog"`
	Environment   string  `env:"APP_ENV" default:"development"`
	Insecure      bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	SamplingRatio float64 `env:"OTEL_SAMPLING_RATIO" default:"1.0"`
}

// AuditConfig holds audit log retention settings.
type AuditConfig struct {
	// RetentionDays is how long audit entries are kept.
	RetentionDays int `env:"AUDIT_RETENTION_DAYS" default:"365"`

	// CheckInterval is how often the retention job runs.
	CheckInterval time.Duration `env:"AUDIT_CHECK_INTERVAL" default:"24h"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
