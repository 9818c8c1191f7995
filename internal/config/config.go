package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port             string `env:"PORT" envDefault:"8080"`
	DatabaseURL      string `env:"DATABASE_URL"`
	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `env:"TWILIO_FROM_NUMBER"`

	// PublicBaseURL is the externally reachable address Twilio uses to
	// fetch the /voice and /gather scripts.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	StaticDir     string `env:"STATIC_DIR" envDefault:"static"`
	TimezoneName  string `env:"LOCAL_TIMEZONE" envDefault:"Local"`

	GraceMinutes                int `env:"GRACE_MINUTES" envDefault:"2"`
	TickSeconds                 int `env:"TICK_SECONDS" envDefault:"20"`
	DefaultWaterIntervalMinutes int `env:"DEFAULT_WATER_INTERVAL_MINUTES" envDefault:"120"`
	SessionTTLMinutes           int `env:"SESSION_TTL_MINUTES" envDefault:"720"`

	LocalTimezone *time.Location `env:"-"`
}

// Load reads configuration values and prepares defaults where applicable.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	location, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		log.Printf("config: invalid LOCAL_TIMEZONE %q, defaulting to system local: %v", cfg.TimezoneName, err)
		location = time.Local
	}
	cfg.LocalTimezone = location

	return cfg, nil
}
