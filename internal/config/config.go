package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL"`

	// PortalBaseURL is the public origin used when building shareable links,
	// e.g. https://portal.tradiehq.com.au
	PortalBaseURL string `env:"PORTAL_BASE_URL,required"`

	PaymentAPIBaseURL string `env:"PAYMENT_API_BASE_URL" envDefault:"https://api.stripe.com"`
	PaymentSecretKey  string `env:"PAYMENT_SECRET_KEY"`
	EmailAPIBaseURL   string `env:"EMAIL_API_BASE_URL" envDefault:"https://api.resend.com"`
	EmailAPIKey       string `env:"EMAIL_API_KEY"`
	EmailFromAddress  string `env:"EMAIL_FROM_ADDRESS" envDefault:"no-reply@localhost"`

	QuoteTokenTTLDays      int `env:"QUOTE_TOKEN_TTL_DAYS" envDefault:"30"`
	InvoiceTokenTTLDays    int `env:"INVOICE_TOKEN_TTL_DAYS" envDefault:"7"`
	PortalRateLimitPerMin  int `env:"PORTAL_RATE_LIMIT_PER_MIN" envDefault:"60"`
	ActionRateLimitPerMin  int `env:"ACTION_RATE_LIMIT_PER_MIN" envDefault:"10"`
	AccessLogRetentionDays int `env:"ACCESS_LOG_RETENTION_DAYS" envDefault:"90"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) QuoteTokenTTL() time.Duration {
	return time.Duration(c.QuoteTokenTTLDays) * 24 * time.Hour
}

func (c *Config) InvoiceTokenTTL() time.Duration {
	return time.Duration(c.InvoiceTokenTTLDays) * 24 * time.Hour
}

func (c *Config) AccessLogRetention() time.Duration {
	return time.Duration(c.AccessLogRetentionDays) * 24 * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.QuoteTokenTTLDays <= 0 {
		return fmt.Errorf("QUOTE_TOKEN_TTL_DAYS must be positive")
	}
	if c.InvoiceTokenTTLDays <= 0 {
		return fmt.Errorf("INVOICE_TOKEN_TTL_DAYS must be positive")
	}
	if !strings.HasPrefix(c.PortalBaseURL, "http://") && !strings.HasPrefix(c.PortalBaseURL, "https://") {
		return fmt.Errorf("PORTAL_BASE_URL must be an absolute http(s) URL")
	}

	if isProduction {
		if err := validateSecret("PAYMENT_SECRET_KEY", c.PaymentSecretKey); err != nil {
			return err
		}
		if c.RedisURL == "" {
			log.Warn().Msg("REDIS_URL is empty in production: rate limiting falls back to process-local counters")
		} else if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if c.EmailAPIKey == "" {
			log.Warn().Msg("EMAIL_API_KEY is empty in production: portal link emails disabled")
		}
		if strings.HasPrefix(c.PortalBaseURL, "http://") {
			log.Warn().Msg("PORTAL_BASE_URL is not https in production")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 16 {
		return fmt.Errorf("%s must be at least 16 characters in production", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
