// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	AuthEnabled    bool   `mapstructure:"AUTH_ENABLED"`
	Port           string `mapstructure:"PORT"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`
	Env            string `mapstructure:"APP_ENV"`

	DBHost                        string `mapstructure:"DB_HOST"`
	DBPort                        string `mapstructure:"DB_PORT"`
	DBUser                        string `mapstructure:"DB_USER"`
	DBPassword                    string `mapstructure:"DB_PASSWORD"`
	DBName                        string `mapstructure:"DB_NAME"`
	DBSSLMode                     string `mapstructure:"DB_SSLMODE"`
	DBReadHost                    string `mapstructure:"DB_READ_HOST"`
	DBReadPort                    string `mapstructure:"DB_READ_PORT"`
	DBReadUser                    string `mapstructure:"DB_READ_USER"`
	DBReadPassword                string `mapstructure:"DB_READ_PASSWORD"`
	DBMaxOpenConns                int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	TelegramAPIID       int    `mapstructure:"TELEGRAM_API_ID"`
	TelegramAPIHash     string `mapstructure:"TELEGRAM_API_HASH"`
	TelegramPhone       string `mapstructure:"TELEGRAM_PHONE"`
	TelegramPassword    string `mapstructure:"TELEGRAM_PASSWORD"`
	TelegramSessionPath string `mapstructure:"TELEGRAM_SESSION_PATH"`
	TelegramProxyURL    string `mapstructure:"TELEGRAM_PROXY_URL"`

	ScrapePostLimit      int    `mapstructure:"SCRAPE_POST_LIMIT"`
	ScrapeChannelDelayMS int    `mapstructure:"SCRAPE_CHANNEL_DELAY_MS"`
	ScrapeSchedule       string `mapstructure:"SCRAPE_SCHEDULE"`
	ScrapeTimeoutMinutes int    `mapstructure:"SCRAPE_TIMEOUT_MINUTES"`
	SchedulerTimezone    string `mapstructure:"SCHEDULER_TIMEZONE"`

	StatsCacheTTLSeconds int `mapstructure:"STATS_CACHE_TTL_SECONDS"`
	StatsWindowDays      int `mapstructure:"STATS_WINDOW_DAYS"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`

	AlertBotToken string `mapstructure:"ALERT_BOT_TOKEN"`
	AlertChatID   int64  `mapstructure:"ALERT_CHAT_ID"`

	ChannelsSeedFile string `mapstructure:"CHANNELS_SEED_FILE"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional; env vars and defaults cover a bare checkout.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("AUTH_ENABLED", false)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "tgscraper")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "user")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	viper.SetDefault("DB_SCHEMA_MODE", "")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)

	viper.SetDefault("REDIS_URL", "localhost:6379")

	viper.SetDefault("TELEGRAM_API_ID", 0)
	viper.SetDefault("TELEGRAM_API_HASH", "")
	viper.SetDefault("TELEGRAM_PHONE", "")
	viper.SetDefault("TELEGRAM_PASSWORD", "")
	viper.SetDefault("TELEGRAM_SESSION_PATH", "session/telegram.json")
	viper.SetDefault("TELEGRAM_PROXY_URL", "")

	viper.SetDefault("SCRAPE_POST_LIMIT", 200)
	viper.SetDefault("SCRAPE_CHANNEL_DELAY_MS", 1000)
	viper.SetDefault("SCRAPE_SCHEDULE", "")
	viper.SetDefault("SCRAPE_TIMEOUT_MINUTES", 30)
	viper.SetDefault("SCHEDULER_TIMEZONE", "UTC")

	viper.SetDefault("STATS_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("STATS_WINDOW_DAYS", 7)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	viper.SetDefault("ALERT_BOT_TOKEN", "")
	viper.SetDefault("ALERT_CHAT_ID", 0)

	viper.SetDefault("CHANNELS_SEED_FILE", "")
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))

	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBConnMaxLifetimeMinutes <= 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must be greater than 0")
	}
	if c.ScrapePostLimit < 1 || c.ScrapePostLimit > 1000 {
		return fmt.Errorf("SCRAPE_POST_LIMIT must be between 1 and 1000, got %d", c.ScrapePostLimit)
	}
	if c.ScrapeChannelDelayMS < 0 {
		return errors.New("SCRAPE_CHANNEL_DELAY_MS must not be negative")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}

// IsProduction reports whether APP_ENV names a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// TelegramConfigured reports whether MTProto credentials are present.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramAPIID != 0 && c.TelegramAPIHash != ""
}

// AlertsConfigured reports whether the scrape report bot is set up.
func (c *Config) AlertsConfigured() bool {
	return c.AlertBotToken != "" && c.AlertChatID != 0
}

// ChannelDelay is the pause between channels during a scrape run.
func (c *Config) ChannelDelay() time.Duration {
	return time.Duration(c.ScrapeChannelDelayMS) * time.Millisecond
}

// ScrapeTimeout bounds a scheduled scrape run.
func (c *Config) ScrapeTimeout() time.Duration {
	if c.ScrapeTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.ScrapeTimeoutMinutes) * time.Minute
}

// StatsCacheTTL is how long computed channel stats stay cached.
func (c *Config) StatsCacheTTL() time.Duration {
	return time.Duration(c.StatsCacheTTLSeconds) * time.Second
}

// StatsWindow is the trailing window for the windowed median.
func (c *Config) StatsWindow() time.Duration {
	if c.StatsWindowDays <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.StatsWindowDays) * 24 * time.Hour
}
