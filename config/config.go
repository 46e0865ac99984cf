package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL    string `env:"DATABASE_URL,required" validate:"required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	// No fallback: a missing or short secret must stop the process.
	JWTSecret string `env:"JWT_SECRET,required" validate:"required,min=32"`

	MailProvider string `env:"MAIL_PROVIDER" envDefault:"log" validate:"oneof=log resend smtp"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"Kipus A+ <no-reply@kipus.local>" validate:"required_unless=MailProvider log"`
	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=MailProvider resend"`
	SMTPHost     string `env:"SMTP_HOST" validate:"required_if=MailProvider smtp"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587" validate:"min=1,max=65535"`
	SMTPUser     string `env:"SMTP_USER" validate:"required_if=MailProvider smtp"`
	SMTPPass     string `env:"SMTP_PASS" validate:"required_if=MailProvider smtp"`

	RedisURL          string        `env:"REDIS_URL"`
	RateLimitAttempts int           `env:"RATE_LIMIT_ATTEMPTS" envDefault:"10" validate:"min=1,max=1000"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m" validate:"min=1s"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	// Empty: X-Forwarded-For is ignored and the socket address is the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," validate:"dive,cidr|ip"`

	JanitorCron        string        `env:"JANITOR_CRON" envDefault:"@every 1h" validate:"required"`
	ResetCodeRetention time.Duration `env:"RESET_CODE_RETENTION" envDefault:"24h" validate:"min=1s"`
}

// Load reads an optional .env file, then the process environment. Variables
// already present in the environment take precedence over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Env != "local" && cfg.MailProvider == "log" {
		return nil, fmt.Errorf("invalid config: MAIL_PROVIDER=log is only allowed with ENV=local")
	}

	return cfg, nil
}

// IsDevelopment reports whether raw error details may be exposed in responses.
func (c *Config) IsDevelopment() bool {
	return c.Env == "local"
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
