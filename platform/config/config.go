// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// WhatsAppConfig provides settings for the outbound WhatsApp gateway.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
}

// WebhookConfig provides settings for the inbound message webhook.
type WebhookConfig interface {
	GetWebhookAPIKey() string
}

// AIConfig provides settings for the AI response engine.
type AIConfig interface {
	GetMoonshotAPIKey() string
	GetAIResponseTimeout() time.Duration
	IsAIEnabled() bool
}

// WorkflowConfig provides business-tunable workflow settings.
type WorkflowConfig interface {
	GetEscalationKeywords() []string
	GetTaxRate() float64
	GetDefaultLanguage() string
}

// SchedulerConfig provides settings for the asynq scheduler and sweepers.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetPickupReminderAge() time.Duration
	GetFollowUpAge() time.Duration
	GetFollowUpBatchSize() int
	GetFollowUpWindow() time.Duration
}

// EmailConfig provides settings for ops alert emails.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromAddress() string
	GetOpsAlertAddress() string
	IsEmailEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTAccessSecret    string
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	WhatsAppURL        string
	WhatsAppKey        string
	WhatsAppDeviceID   string
	WebhookAPIKey      string
	MoonshotAPIKey     string
	AIResponseTimeout  time.Duration
	EscalationKeywords []string
	TaxRate            float64
	DefaultLanguage    string
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	PickupReminderAge  time.Duration
	FollowUpAge        time.Duration
	FollowUpBatchSize  int
	FollowUpWindow     time.Duration
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	EmailFromAddress   string
	OpsAlertAddress    string
}

// defaultEscalationKeywords is the fallback keyword list for the local
// escalation signal: explicit human-agent requests, complaints, and payment
// problems. Business-tunable via ESCALATION_KEYWORDS.
var defaultEscalationKeywords = []string{
	"hablar con un agente",
	"hablar con una persona",
	"agente humano",
	"atencion al cliente",
	"queja",
	"reclamo",
	"problema con el pago",
	"no puedo pagar",
	"speak to an agent",
	"human agent",
	"complaint",
	"payment problem",
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppURL() string      { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string      { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }

// WebhookConfig implementation
func (c *Config) GetWebhookAPIKey() string { return c.WebhookAPIKey }

// AIConfig implementation
func (c *Config) GetMoonshotAPIKey() string           { return c.MoonshotAPIKey }
func (c *Config) GetAIResponseTimeout() time.Duration { return c.AIResponseTimeout }
func (c *Config) IsAIEnabled() bool                   { return c.MoonshotAPIKey != "" }

// WorkflowConfig implementation
func (c *Config) GetEscalationKeywords() []string { return c.EscalationKeywords }
func (c *Config) GetTaxRate() float64             { return c.TaxRate }
func (c *Config) GetDefaultLanguage() string      { return c.DefaultLanguage }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                 { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool           { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string           { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int            { return c.AsynqConcurrency }
func (c *Config) GetPickupReminderAge() time.Duration { return c.PickupReminderAge }
func (c *Config) GetFollowUpAge() time.Duration       { return c.FollowUpAge }
func (c *Config) GetFollowUpBatchSize() int           { return c.FollowUpBatchSize }
func (c *Config) GetFollowUpWindow() time.Duration    { return c.FollowUpWindow }

// EmailConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetOpsAlertAddress() string  { return c.OpsAlertAddress }
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.OpsAlertAddress != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	keywords := splitCSV(getEnv("ESCALATION_KEYWORDS", ""))
	if len(keywords) == 0 {
		keywords = defaultEscalationKeywords
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		WhatsAppURL:        getEnv("WHATSAPP_URL", ""),
		WhatsAppKey:        getEnv("WHATSAPP_KEY", ""),
		WhatsAppDeviceID:   getEnv("WHATSAPP_DEVICE_ID", ""),
		WebhookAPIKey:      getEnv("WEBHOOK_API_KEY", ""),
		MoonshotAPIKey:     getEnv("MOONSHOT_API_KEY", ""),
		AIResponseTimeout:  mustDuration(getEnv("AI_RESPONSE_TIMEOUT", "25s")),
		EscalationKeywords: keywords,
		TaxRate:            mustFloat(getEnv("TAX_RATE", "0.13")),
		DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "es"),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "10"))),
		PickupReminderAge:  mustDuration(getEnv("PICKUP_REMINDER_AGE", "24h")),
		FollowUpAge:        mustDuration(getEnv("FOLLOW_UP_AGE", "720h")),
		FollowUpBatchSize:  int(mustInt64(getEnv("FOLLOW_UP_BATCH_SIZE", "50"))),
		FollowUpWindow:     mustDuration(getEnv("FOLLOW_UP_WINDOW", "168h")),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           int(mustInt64(getEnv("SMTP_PORT", "587"))),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		EmailFromAddress:   getEnv("EMAIL_FROM_ADDRESS", ""),
		OpsAlertAddress:    getEnv("OPS_ALERT_ADDRESS", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return nil, fmt.Errorf("TAX_RATE must be in [0, 1)")
	}
	if cfg.DefaultLanguage != "es" && cfg.DefaultLanguage != "en" {
		return nil, fmt.Errorf("DEFAULT_LANGUAGE must be es or en")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
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
