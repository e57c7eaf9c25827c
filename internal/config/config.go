package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Analyzer     AnalyzerConfig
	Inbox        InboxConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines the operator login gate. A single operator credential
// is provisioned through the environment; the password is stored as a
// bcrypt hash.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	OperatorUsername      string
	OperatorPasswordHash  string
	BcryptCost            int
}

// AnalyzerConfig points at the conversation analysis API.
type AnalyzerConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// InboxConfig configures the mailbox web-app poller.
type InboxConfig struct {
	WebAppURL      string
	APIKey         string
	PollSeconds    int
	FetchMax       int
	SeenIDCapacity int
	Enabled        bool
}

// NotificationConfig holds outbound notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-intel"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 720),
			OperatorUsername:      getEnv("AUTH_OPERATOR_USERNAME", "operator"),
			OperatorPasswordHash:  os.Getenv("AUTH_OPERATOR_PASSWORD_HASH"),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Analyzer: AnalyzerConfig{
			BaseURL:        getEnv("ANALYZER_BASE_URL", "https://generativelanguage.googleapis.com"),
			APIKey:         os.Getenv("ANALYZER_API_KEY"),
			Model:          getEnv("ANALYZER_MODEL", "gemini-3-flash-preview"),
			TimeoutSeconds: getEnvAsInt("ANALYZER_TIMEOUT_SECONDS", 45),
		},
		Inbox: InboxConfig{
			WebAppURL:      os.Getenv("INBOX_WEBAPP_URL"),
			APIKey:         os.Getenv("INBOX_API_KEY"),
			PollSeconds:    getEnvAsInt("INBOX_POLL_SECONDS", 10),
			FetchMax:       getEnvAsInt("INBOX_FETCH_MAX", 25),
			SeenIDCapacity: getEnvAsInt("INBOX_SEEN_ID_CAPACITY", 2500),
			Enabled:        getEnvAsBool("INBOX_POLL_ENABLED", false),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the analyzer call timeout.
func (a AnalyzerConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 45 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// PollInterval returns the inbox poll cadence.
func (i InboxConfig) PollInterval() time.Duration {
	if i.PollSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(i.PollSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
