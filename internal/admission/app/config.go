package app

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime configuration, loaded entirely from environment
// variables.
type Config struct {
	// AdminJWTSecret is the HS256 shared secret used to verify administrator
	// bearer tokens minted by the surrounding application. Required.
	AdminJWTSecret string `env:"ADMISSION_ADMIN_JWT_SECRET"`
	// AdminJWTIssuer must match the iss claim of admin tokens.
	AdminJWTIssuer string `env:"ADMISSION_ADMIN_JWT_ISSUER" envDefault:"foyer"`

	DatabaseFile string `env:"ADMISSION_DATABASE_FILE" envDefault:"admission.db"`

	Env       string `env:"ADMISSION_ENV" envDefault:"dev"`
	LogLevel  string `env:"ADMISSION_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"ADMISSION_LOG_FORMAT" envDefault:"json"`

	Port                int           `env:"ADMISSION_PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"ADMISSION_SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// LoadConfig parses configuration from the environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if cfg.AdminJWTSecret == "" {
		return Config{}, errors.New("ADMISSION_ADMIN_JWT_SECRET is required")
	}
	return cfg, nil
}
