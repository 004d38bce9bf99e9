package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"

	ArchiveBackendNone  = "none"
	ArchiveBackendS3    = "s3"
	ArchiveBackendLocal = "local"

	maxMessageAttachments = 10
)

const defaultAssistantInstructions = `You are the support assistant for FrameLink at Centro Médico de Algés.
Answer questions using the attached documents whenever they are relevant and cite them.
If the documents do not cover the question, say so briefly and suggest contacting support.`

// Config holds the environment driven configuration for the support service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"framelink-support"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"SUPPORT_API_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTLPHeaders     string        `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	TracePIILevel   string        `env:"TRACE_PII_LEVEL" envDefault:"hashed"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseDSN    string        `env:"DATABASE_DSN,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// OpenAI. An empty key leaves the service running with contact and upload disabled.
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIHTTPTimeout time.Duration `env:"OPENAI_HTTP_TIMEOUT" envDefault:"120s"`

	// Assistant
	AssistantID           string `env:"ASSISTANT_ID"`
	AssistantModel        string `env:"ASSISTANT_MODEL" envDefault:"gpt-4o-mini"`
	AssistantName         string `env:"ASSISTANT_NAME" envDefault:"FrameLink Support"`
	AssistantInstructions string `env:"ASSISTANT_INSTRUCTIONS"`

	// Contact
	ContactStreaming bool `env:"CONTACT_STREAMING" envDefault:"true"`
	// The assistants API accepts at most maxMessageAttachments per message,
	// so only the newest uploads are offered to file_search.
	ContactMaxAttachments int    `env:"CONTACT_MAX_ATTACHMENTS" envDefault:"10"`
	FallbackRulesFile     string `env:"FALLBACK_RULES_FILE"`
	CitationCacheSize     int    `env:"CITATION_CACHE_SIZE" envDefault:"256"`

	// Uploads
	UploadMaxBytes  int64 `env:"UPLOAD_MAX_BYTES" envDefault:"536870912"`
	UploadListLimit int   `env:"UPLOAD_LIST_LIMIT" envDefault:"50"`

	// Archive of original upload bytes
	ArchiveBackend     string `env:"ARCHIVE_BACKEND" envDefault:"none"`
	ArchiveLocalPath   string `env:"ARCHIVE_LOCAL_PATH"`
	ArchiveS3Endpoint  string `env:"ARCHIVE_S3_ENDPOINT"`
	ArchiveS3Region    string `env:"ARCHIVE_S3_REGION" envDefault:"us-west-2"`
	ArchiveS3Bucket    string `env:"ARCHIVE_S3_BUCKET"`
	ArchiveS3AccessKey string `env:"ARCHIVE_S3_ACCESS_KEY_ID"`
	ArchiveS3SecretKey string `env:"ARCHIVE_S3_SECRET_ACCESS_KEY"`
	ArchiveS3PathStyle bool   `env:"ARCHIVE_S3_USE_PATH_STYLE" envDefault:"true"`

	// Redis shares the assistant handle between replicas when set.
	RedisURL string `env:"REDIS_URL"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAIBaseURL), "/")
	c.AssistantID = strings.TrimSpace(c.AssistantID)
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	c.ArchiveBackend = strings.ToLower(strings.TrimSpace(c.ArchiveBackend))
	c.ArchiveS3Bucket = strings.TrimSpace(c.ArchiveS3Bucket)
	c.ArchiveS3AccessKey = strings.TrimSpace(c.ArchiveS3AccessKey)
	c.ArchiveS3SecretKey = strings.TrimSpace(c.ArchiveS3SecretKey)
	c.ArchiveS3Endpoint = strings.TrimSpace(c.ArchiveS3Endpoint)

	if strings.TrimSpace(c.AssistantInstructions) == "" {
		c.AssistantInstructions = defaultAssistantInstructions
	}
	if c.UploadMaxBytes <= 0 {
		c.UploadMaxBytes = 512 * 1024 * 1024
	}
	if c.UploadListLimit <= 0 {
		c.UploadListLimit = 50
	}
	if c.ContactMaxAttachments <= 0 || c.ContactMaxAttachments > maxMessageAttachments {
		c.ContactMaxAttachments = maxMessageAttachments
	}
	if c.CitationCacheSize <= 0 {
		c.CitationCacheSize = 256
	}

	switch c.DatabaseDriver {
	case DatabaseDriverPostgres, DatabaseDriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DatabaseDriverPostgres, DatabaseDriverSQLite, c.DatabaseDriver)
	}

	switch c.ArchiveBackend {
	case "", ArchiveBackendNone:
		c.ArchiveBackend = ArchiveBackendNone
	case ArchiveBackendLocal:
		if strings.TrimSpace(c.ArchiveLocalPath) == "" {
			return fmt.Errorf("ARCHIVE_LOCAL_PATH is required when ARCHIVE_BACKEND is local")
		}
	case ArchiveBackendS3:
		if c.ArchiveS3Bucket == "" {
			return fmt.Errorf("ARCHIVE_S3_BUCKET is required when ARCHIVE_BACKEND is s3")
		}
	default:
		return fmt.Errorf("unsupported ARCHIVE_BACKEND %q", c.ArchiveBackend)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// OpenAIConfigured reports whether an API key is present.
func (c *Config) OpenAIConfigured() bool {
	return c.OpenAIAPIKey != ""
}

// RedisConfigured reports whether a shared assistant handle store is configured.
func (c *Config) RedisConfigured() bool {
	return strings.TrimSpace(c.RedisURL) != ""
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
