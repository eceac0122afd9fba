// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	IsDevelopment() bool
}

// WebhookConfig provides settings for the outbound CRM webhook channel.
// An empty URL is a valid configuration: it drives the not_configured
// terminal status rather than an error.
type WebhookConfig interface {
	GetCRMWebhookURL() string
}

// ConversionsConfig provides credentials for the ad-platform conversion API.
type ConversionsConfig interface {
	GetMetaAccessToken() string
	GetMetaPixelID() string
	IsConversionsEnabled() bool
}

// EmailConfig provides settings for the lead notification email channel.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromAddress() string
	GetLeadNotificationEmail() string
	IsEmailEnabled() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketLeadImages() string
	GetMinIOPublicBaseURL() string
	IsMinIOEnabled() bool
}

// VisionConfig provides settings for the Gemini vision scoring client.
type VisionConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsVisionEnabled() bool
}

// SchedulerConfig provides settings for the asynq background task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	CORSAllowAll          bool
	CORSOrigins           []string
	CRMWebhookURL         string
	MetaAccessToken       string
	MetaPixelID           string
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	EmailFromAddress      string
	LeadNotificationEmail string
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinIOMaxFileSize      int64
	MinioBucketLeadImages string
	MinIOPublicBaseURL    string
	GeminiAPIKey          string
	GeminiModel           string
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) IsDevelopment() bool      { return strings.EqualFold(c.Env, "development") }

// WebhookConfig implementation
func (c *Config) GetCRMWebhookURL() string { return c.CRMWebhookURL }

// ConversionsConfig implementation
func (c *Config) GetMetaAccessToken() string { return c.MetaAccessToken }
func (c *Config) GetMetaPixelID() string     { return c.MetaPixelID }
func (c *Config) IsConversionsEnabled() bool {
	return c.MetaAccessToken != "" && c.MetaPixelID != ""
}

// EmailConfig implementation
func (c *Config) GetSMTPHost() string              { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                 { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string          { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string          { return c.SMTPPassword }
func (c *Config) GetEmailFromAddress() string      { return c.EmailFromAddress }
func (c *Config) GetLeadNotificationEmail() string { return c.LeadNotificationEmail }
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.LeadNotificationEmail != ""
}

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string         { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string        { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string        { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool             { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64       { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketLeadImages() string { return c.MinioBucketLeadImages }
func (c *Config) GetMinIOPublicBaseURL() string    { return c.MinIOPublicBaseURL }
func (c *Config) IsMinIOEnabled() bool             { return c.MinIOEndpoint != "" }

// VisionConfig implementation
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsVisionEnabled() bool   { return c.GeminiAPIKey != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CRMWebhookURL:         getEnv("CRM_WEBHOOK_URL", ""),
		MetaAccessToken:       getEnv("META_ACCESS_TOKEN", ""),
		MetaPixelID:           getEnv("META_PIXEL_ID", ""),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "2525")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		EmailFromAddress:      getEnv("SMTP_SENDER", ""),
		LeadNotificationEmail: getEnv("LEAD_NOTIFICATION_EMAIL", ""),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:      mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketLeadImages: getEnv("MINIO_BUCKET_LEAD_IMAGES", "lead-images"),
		MinIOPublicBaseURL:    getEnv("MINIO_PUBLIC_BASE_URL", ""),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE_NAME", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if (cfg.MetaAccessToken == "") != (cfg.MetaPixelID == "") {
		return nil, fmt.Errorf("META_ACCESS_TOKEN and META_PIXEL_ID must be set together")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
