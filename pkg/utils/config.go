package utils

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all process-wide configuration. The JWT secret is loaded once
// at startup and never logged.
type Config struct {
	Addr      string        `env:"BOOKHUB_ADDR" envDefault:":8080"`
	JWTSecret string        `env:"BOOKHUB_JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer string        `env:"BOOKHUB_JWT_ISSUER" envDefault:"bookhub"`
	JWTTTL    time.Duration `env:"BOOKHUB_JWT_TTL" envDefault:"1h"`
}

// LoadConfig reads an optional .env file and then the environment.
// A missing .env is not an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}
