package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	AuthSigningKey     string        `mapstructure:"AUTH_SIGNING_KEY"`
	AuthTokenTTL       time.Duration `mapstructure:"AUTH_TOKEN_TTL"`
	HighlightLead      time.Duration `mapstructure:"HIGHLIGHT_LEAD"`
	HighlightTick      time.Duration `mapstructure:"HIGHLIGHT_TICK"`
	DemoEnabled        bool          `mapstructure:"DEMO_ENABLED"`
	DemoBootstrapDelay time.Duration `mapstructure:"DEMO_BOOTSTRAP_DELAY"`
	DemoCooldown       time.Duration `mapstructure:"DEMO_COOLDOWN"`
	UndoWindow         time.Duration `mapstructure:"UNDO_WINDOW"`
	Timezone           string        `mapstructure:"TIMEZONE"`
	RateLimitRPS       float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit          string        `mapstructure:"BODY_LIMIT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:8081")
	v.SetDefault("AUTH_TOKEN_TTL", "12h")
	v.SetDefault("HIGHLIGHT_LEAD", "20m")
	v.SetDefault("HIGHLIGHT_TICK", "30s")
	v.SetDefault("DEMO_ENABLED", true)
	v.SetDefault("DEMO_BOOTSTRAP_DELAY", "60s")
	v.SetDefault("DEMO_COOLDOWN", "2m")
	v.SetDefault("UNDO_WINDOW", "2200ms")
	v.SetDefault("TIMEZONE", "Europe/Helsinki")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("BODY_LIMIT", "1M")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_SIGNING_KEY")
	v.BindEnv("AUTH_TOKEN_TTL")
	v.BindEnv("HIGHLIGHT_LEAD")
	v.BindEnv("HIGHLIGHT_TICK")
	v.BindEnv("DEMO_ENABLED")
	v.BindEnv("DEMO_BOOTSTRAP_DELAY")
	v.BindEnv("DEMO_COOLDOWN")
	v.BindEnv("UNDO_WINDOW")
	v.BindEnv("TIMEZONE")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("BODY_LIMIT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 0 {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active, all requests act as a clinician.")
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

// Location resolves TIMEZONE. Appointment times are wall-clock times in this
// zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks that the configuration is safe to run. Outside development
// AUTH_SIGNING_KEY must be set so issued tokens survive restarts and cannot
// be forged with an empty key.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY is required when ENV=%q", c.Env)
	}
	if c.AuthSigningKey != "" && len(c.AuthSigningKey) < 32 {
		return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 characters, got %d", len(c.AuthSigningKey))
	}

	durations := []struct {
		name string
		val  time.Duration
	}{
		{"AUTH_TOKEN_TTL", c.AuthTokenTTL},
		{"HIGHLIGHT_TICK", c.HighlightTick},
		{"DEMO_BOOTSTRAP_DELAY", c.DemoBootstrapDelay},
		{"DEMO_COOLDOWN", c.DemoCooldown},
		{"UNDO_WINDOW", c.UndoWindow},
	}
	for _, d := range durations {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.val)
		}
	}
	if c.HighlightLead < 0 {
		return fmt.Errorf("HIGHLIGHT_LEAD must not be negative, got %s", c.HighlightLead)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
