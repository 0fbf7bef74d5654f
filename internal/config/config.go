package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=pyme port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	Environment string // "production" o "development"
	LogLevel    string

	// Umbrales del registro de stock que se abre al crear un producto
	DefaultMinStock int
	DefaultMaxStock int

	// Límite por IP para login y registro
	AuthRatePerSecond float64
	AuthRateBurst     int
}

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET no está definido")
	ErrShortJWTSecret   = errors.New("JWT_SECRET debe tener al menos 32 caracteres")
)

// Load lee la configuración del entorno. Un archivo .env, si existe, se carga
// antes sin pisar variables ya definidas.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.DefaultMinStock, err = getEnvInt("DEFAULT_MIN_STOCK", 5); err != nil {
		return nil, err
	}
	if cfg.DefaultMaxStock, err = getEnvInt("DEFAULT_MAX_STOCK", 100); err != nil {
		return nil, err
	}
	if cfg.AuthRateBurst, err = getEnvInt("AUTH_RATE_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.AuthRatePerSecond, err = getEnvFloat("AUTH_RATE_PER_SECOND", 1); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if len(c.JWTSecret) < 32 {
		return ErrShortJWTSecret
	}
	if c.DefaultMinStock < 0 || c.DefaultMaxStock < 0 {
		return fmt.Errorf("los umbrales de stock no pueden ser negativos (min=%d, max=%d)", c.DefaultMinStock, c.DefaultMaxStock)
	}
	return nil
}

// UsesDefaultDSN reports whether DATABASE_DSN was left at the local default.
func (c *Config) UsesDefaultDSN() bool {
	return c.DatabaseDSN == defaultDSN
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s inválido: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s inválido: %w", key, err)
	}
	return f, nil
}
