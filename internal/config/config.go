// Package config loads application configuration from the environment. A
// .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable named in its tag.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`   // dev / test / prod
	Port string `env:"APP_PORT" envDefault:"8080"` // HTTP port to listen on

	// Relational store. DB_DRIVER=sqlite uses DB_PATH instead of the
	// MySQL connection fields.
	DBDriver  string        `env:"DB_DRIVER" envDefault:"mysql"`
	DBUser    string        `env:"DB_USER" envDefault:"root"`
	DBPass    string        `env:"DB_PASS"`
	DBHost    string        `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort    string        `env:"DB_PORT" envDefault:"3306"`
	DBName    string        `env:"DB_NAME" envDefault:"movie_booking"`
	DBPath    string        `env:"DB_PATH" envDefault:"data/booking.db"`
	DBMigrate bool          `env:"DB_MIGRATE" envDefault:"true"`
	DBTimeout time.Duration `env:"DB_TIMEOUT" envDefault:"5s"` // bound on each request's storage calls

	JWTSecret       string `env:"JWT_SECRET,required,notEmpty"`
	AccessTTLMin    int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"15"`
	RefreshTTLDays  int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"7"`
	BcryptCost      int    `env:"BCRYPT_COST" envDefault:"10"`
	AdminInviteCode string `env:"ADMIN_INVITE_CODE"` // empty disables admin self-registration

	SelectionTTL time.Duration `env:"SELECTION_TTL" envDefault:"30m"`
	PaymentDelay time.Duration `env:"PAYMENT_DELAY" envDefault:"0s"`
	Timezone     string        `env:"APP_TIMEZONE" envDefault:"Local"`

	RabbitMQURL    string `env:"RABBITMQ_URL"`
	BookingLogPath string `env:"BOOKING_LOG_PATH" envDefault:"logs/booking.log"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.DBDriver)
	}
	if c.AccessTTLMin < 1 || c.RefreshTTLDays < 1 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.DBTimeout <= 0 {
		return fmt.Errorf("DB_TIMEOUT must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the time zone show dates and times are interpreted in.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
