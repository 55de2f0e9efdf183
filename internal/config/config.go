package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"teamchat"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	ServerPort int `env:"SERVER_PORT" envDefault:"8080"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	JWTAccessSecret  string `env:"JWT_SECRET,required,notEmpty"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET,required,notEmpty"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	ESURL      string `env:"ES_URL"`
	ESUser     string `env:"ES_USER"`
	ESPassword string `env:"ES_PASSWORD"`
	ESIndex    string `env:"ES_INDEX" envDefault:"messages"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) AccessSecret() []byte  { return []byte(c.JWTAccessSecret) }
func (c Config) RefreshSecret() []byte { return []byte(c.JWTRefreshSecret) }

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.ServerPort) }

func (c Config) SearchEnabled() bool { return c.ESURL != "" }

func (c Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }
