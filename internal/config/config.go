// Package config reads the settings of both binaries from the environment,
// after loading a .env file when one is present.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// API configures cmd/api.
type API struct {
	Env            string        `env:"APP_ENV" env-default:"development"`
	Port           string        `env:"API_PORT" env-default:"8000"`
	MongoURI       string        `env:"MONGO_URI"`
	MongoDatabase  string        `env:"MONGO_DATABASE" env-default:"thalcare"`
	JWTSecret      string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" env-default:"24h"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:8080,http://127.0.0.1:8080"`
	TextbeltKey    string        `env:"TEXTBELT_API_KEY"`
	TextbeltURL    string        `env:"TEXTBELT_URL" env-default:"https://textbelt.com/text"`
	DonorCooldown  time.Duration `env:"DONOR_COOLDOWN" env-default:"2160h"`
}

// Portal configures cmd/portal.
type Portal struct {
	Env           string        `env:"APP_ENV" env-default:"development"`
	Port          string        `env:"PORTAL_PORT" env-default:"8080"`
	APIBaseURL    string        `env:"API_BASE_URL" env-default:"http://127.0.0.1:8000"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	SessionTTL    time.Duration `env:"SESSION_TTL" env-default:"12h"`
	SecureCookies bool          `env:"SECURE_COOKIES" env-default:"false"`
}

// IsProduction reports whether APP_ENV asks for production behaviour.
func IsProduction(env string) bool {
	return env == "production" || env == "prod"
}

func LoadAPI() (*API, error) {
	var cfg API
	if err := load(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadPortal() (*Portal, error) {
	var cfg Portal
	if err := load(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func load(cfg any) error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
