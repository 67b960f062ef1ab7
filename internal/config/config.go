package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// AdminToken guards staff/admin routes when set. Empty disables the
	// check (local development).
	AdminToken string

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}

	// Webhook dispatcher tuning.
	WebhookWorkers   int
	WebhookQueueSize int
	WebhookTimeout   time.Duration

	// AI completion backend (OpenAI-compatible). Empty APIKey means the
	// responder always answers with the fallback text.
	AIAPIKey  string
	AIBaseURL string
	AIModel   string
	AITimeout time.Duration

	// Transactional email provider. Empty APIKey disables sending.
	EmailAPIKey  string
	EmailBaseURL string
	EmailFrom    string

	// Optional Kafka mirror of ticket events.
	KafkaBrokers     []string
	KafkaTopicTicket string

	// Notification relay reconnect policy.
	NotifyChannel      string
	NotifyMaxAttempts  int
	NotifyRetryBase    time.Duration
	NotifyRetryCeiling time.Duration
	NotifyMaxAlerts    int
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:    getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:   firstEnv("APP_PORT", "HTTP_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		AdminToken: getEnv("ADMIN_TOKEN", ""),

		WebhookWorkers:   getEnvInt("WEBHOOK_WORKERS", 4),
		WebhookQueueSize: getEnvInt("WEBHOOK_QUEUE_SIZE", 256),
		WebhookTimeout:   getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),

		AIAPIKey:  getEnv("AI_API_KEY", ""),
		AIBaseURL: getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
		AIModel:   getEnv("AI_MODEL", "gpt-4o-mini"),
		AITimeout: getEnvDuration("AI_TIMEOUT", 30*time.Second),

		EmailAPIKey:  getEnv("EMAIL_API_KEY", ""),
		EmailBaseURL: getEnv("EMAIL_BASE_URL", "https://api.resend.com"),
		EmailFrom:    getEnv("EMAIL_FROM", "Suporte <suporte@example.com>"),

		KafkaBrokers:     splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicTicket: getEnv("KAFKA_TOPIC_TICKET", ""),

		NotifyChannel:      getEnv("NOTIFY_CHANNEL", "suporte_changes"),
		NotifyMaxAttempts:  getEnvInt("NOTIFY_MAX_ATTEMPTS", 5),
		NotifyRetryBase:    getEnvDuration("NOTIFY_RETRY_BASE", 2*time.Second),
		NotifyRetryCeiling: getEnvDuration("NOTIFY_RETRY_CEILING", 30*time.Second),
		NotifyMaxAlerts:    getEnvInt("NOTIFY_MAX_ALERTS", 50),
	}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "suporte")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.Host == "" || c.DB.Database == "" {
		return errors.New("config: DB_HOST and DB_DATABASE are required")
	}
	if c.AppEnv == "production" && c.DB.Password == "" {
		return errors.New("config: in production DB_PASSWORD is required")
	}
	if c.AppEnv == "production" && c.AdminToken == "" {
		return errors.New("config: in production ADMIN_TOKEN is required")
	}
	if c.WebhookWorkers < 1 {
		return errors.New("config: WEBHOOK_WORKERS must be at least 1")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
