package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir  string   `mapstructure:"MIGRATIONS_DIR"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string   `mapstructure:"BODY_LIMIT"`

	Seed                 bool          `mapstructure:"NOTIFY_SEED"`
	GeneratorEnabled     bool          `mapstructure:"NOTIFY_GENERATOR_ENABLED"`
	GeneratorInterval    time.Duration `mapstructure:"NOTIFY_GENERATOR_INTERVAL"`
	GeneratorProbability float64       `mapstructure:"NOTIFY_GENERATOR_PROBABILITY"`
	ActionProbability    float64       `mapstructure:"NOTIFY_ACTION_PROBABILITY"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "MIGRATIONS_DIR",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT",
	"NOTIFY_SEED", "NOTIFY_GENERATOR_ENABLED", "NOTIFY_GENERATOR_INTERVAL",
	"NOTIFY_GENERATOR_PROBABILITY", "NOTIFY_ACTION_PROBABILITY",
}

// Load reads configuration from the environment and an optional .env file.
// The returned config has not been validated.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "64K")
	v.SetDefault("NOTIFY_SEED", true)
	v.SetDefault("NOTIFY_GENERATOR_ENABLED", true)
	v.SetDefault("NOTIFY_GENERATOR_INTERVAL", "30s")
	v.SetDefault("NOTIFY_GENERATOR_PROBABILITY", 0.2)
	v.SetDefault("NOTIFY_ACTION_PROBABILITY", 0.3)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Env values arrive as a single comma separated string.
	if origins := v.GetString("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
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

// HasDatabase reports whether snapshot persistence is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.GeneratorInterval <= 0 {
		return fmt.Errorf("NOTIFY_GENERATOR_INTERVAL must be positive, got %s", c.GeneratorInterval)
	}
	if c.GeneratorProbability < 0 || c.GeneratorProbability > 1 {
		return fmt.Errorf("NOTIFY_GENERATOR_PROBABILITY must be within [0,1], got %g", c.GeneratorProbability)
	}
	if c.ActionProbability < 0 || c.ActionProbability > 1 {
		return fmt.Errorf("NOTIFY_ACTION_PROBABILITY must be within [0,1], got %g", c.ActionProbability)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// Warn logs settings that are valid but worth flagging at startup.
func (c *Config) Warn(logger zerolog.Logger) {
	if !c.HasDatabase() {
		logger.Warn().Msg("DATABASE_URL not set; notifications live in memory and are lost on restart")
	}
	if c.IsProduction() && c.GeneratorEnabled {
		logger.Warn().Msg("synthetic notification generator is enabled in production")
	}
	for _, o := range c.CORSOrigins {
		if o == "*" && c.IsProduction() {
			logger.Warn().Msg("CORS_ORIGINS allows any origin in production")
		}
	}
}
