package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const minSecretKeyLen = 32

type Config struct {
	Port                  string   `mapstructure:"PORT"`
	Env                   string   `mapstructure:"ENV"`
	AppName               string   `mapstructure:"APP_NAME"`
	DatabaseURL           string   `mapstructure:"DATABASE_URL"`
	DBMaxConns            int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns            int32    `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir         string   `mapstructure:"MIGRATIONS_DIR"`
	RedisURL              string   `mapstructure:"REDIS_URL"`
	SecretKey             string   `mapstructure:"SECRET_KEY"`
	SessionTimeoutMinutes int      `mapstructure:"SESSION_TIMEOUT_MINUTES"`
	CookieSecure          bool     `mapstructure:"COOKIE_SECURE"`
	CORSOrigins           []string `mapstructure:"CORS_ORIGINS"`
	Timezone              string   `mapstructure:"TIMEZONE"`
	LoginRateLimitRPS     float64  `mapstructure:"LOGIN_RATE_LIMIT_RPS"`
	LoginRateLimitBurst   int      `mapstructure:"LOGIN_RATE_LIMIT_BURST"`
	OllamaURL             string   `mapstructure:"OLLAMA_URL"`
	OllamaTimeoutSeconds  int      `mapstructure:"OLLAMA_TIMEOUT_SECONDS"`
	OllamaDefaultModel    string   `mapstructure:"OLLAMA_DEFAULT_MODEL"`
	PDFFontPath           string   `mapstructure:"PDF_FONT_PATH"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("APP_NAME", "計画相談支援 利用者管理システム")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("SESSION_TIMEOUT_MINUTES", 30)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TIMEZONE", "Asia/Tokyo")
	v.SetDefault("LOGIN_RATE_LIMIT_RPS", 1)
	v.SetDefault("LOGIN_RATE_LIMIT_BURST", 5)
	v.SetDefault("OLLAMA_URL", "http://localhost:11434")
	v.SetDefault("OLLAMA_TIMEOUT_SECONDS", 120)
	v.SetDefault("OLLAMA_DEFAULT_MODEL", "llama3")
	v.SetDefault("PDF_FONT_PATH", "./fonts/ipaexg.ttf")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "APP_NAME", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"MIGRATIONS_DIR", "REDIS_URL", "SECRET_KEY", "SESSION_TIMEOUT_MINUTES",
		"COOKIE_SECURE", "CORS_ORIGINS", "TIMEZONE", "LOGIN_RATE_LIMIT_RPS",
		"LOGIN_RATE_LIMIT_BURST", "OLLAMA_URL", "OLLAMA_TIMEOUT_SECONDS",
		"OLLAMA_DEFAULT_MODEL", "PDF_FONT_PATH",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() && cfg.SecretKey == "" {
		cfg.SecretKey = "development-only-secret-key-change-me!"
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SessionTimeout is the lifetime of an issued session token.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutMinutes) * time.Minute
}

// OllamaTimeout bounds a single call to the inference server.
func (c *Config) OllamaTimeout() time.Duration {
	return time.Duration(c.OllamaTimeoutSeconds) * time.Second
}

// Location resolves TIMEZONE, falling back to a fixed JST offset when the
// host has no tzdata.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if c.IsProduction() && len(c.SecretKey) < minSecretKeyLen {
		return fmt.Errorf("SECRET_KEY must be at least %d characters in production, got %d", minSecretKeyLen, len(c.SecretKey))
	}
	if c.SessionTimeoutMinutes <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT_MINUTES must be positive, got %d", c.SessionTimeoutMinutes)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
