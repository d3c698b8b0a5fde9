package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the cinema binaries read from the environment.
// The POSTGRES_* names are shared with the deployment tooling and must not change.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"cinema"`
	Debug    bool   `env:"DEBUG" envDefault:"false"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8000"`

	DB    DatabaseConfig
	Auth  AuthConfig
	Email EmailConfig
	Cache CacheConfig
}

type DatabaseConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD"`
	Name     string `env:"POSTGRES_DB" envDefault:"cinema"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

type AuthConfig struct {
	AccessSecret  string        `env:"SECRET_KEY_ACCESS"`
	RefreshSecret string        `env:"SECRET_KEY_REFRESH"`
	SigningSecret string        `env:"SIGNING_SECRET"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	ActivationTTL time.Duration `env:"ACTIVATION_TOKEN_TTL" envDefault:"24h"`
	ResetTTL      time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"1h"`
}

type EmailConfig struct {
	Host       string `env:"EMAIL_HOST"`
	Port       int    `env:"EMAIL_PORT" envDefault:"587"`
	Username   string `env:"EMAIL_HOST_USER"`
	Password   string `env:"EMAIL_HOST_PASSWORD"`
	Encryption string `env:"EMAIL_ENCRYPTION" envDefault:"tls"`
	From       string `env:"EMAIL_FROM" envDefault:"no-reply@cinema.local"`
	FromName   string `env:"EMAIL_FROM_NAME" envDefault:"Cinema"`
}

type CacheConfig struct {
	Driver string `env:"CACHE" envDefault:"none"`
	Path   string `env:"BADGER_PATH" envDefault:"./tmp/badger"`
}

// Load reads an optional .env file and then parses the environment. A missing
// .env file is not an error: in containers the environment is injected directly.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("loading %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return &cfg, nil
}

// DSN builds a postgres connection string for the pgx stdlib driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL builds the postgres URL form used by golang-migrate. Credentials are
// escaped so passwords with URL metacharacters survive the round trip.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
