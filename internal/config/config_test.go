package config_test

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"pyme-backend/internal/config"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	c := qt.New(t)
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("DEFAULT_MIN_STOCK", "")
	t.Setenv("DEFAULT_MAX_STOCK", "")

	cfg, err := config.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.HTTPPort, qt.Equals, "8080")
	c.Assert(cfg.DefaultMinStock, qt.Equals, 5)
	c.Assert(cfg.DefaultMaxStock, qt.Equals, 100)
	c.Assert(cfg.UsesDefaultDSN(), qt.IsTrue)
	c.Assert(cfg.IsProduction(), qt.IsFalse)
}

func TestLoadOverrides(t *testing.T) {
	c := qt.New(t)
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DEFAULT_MIN_STOCK", "10")
	t.Setenv("DEFAULT_MAX_STOCK", "500")
	t.Setenv("AUTH_RATE_PER_SECOND", "2.5")

	cfg, err := config.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.HTTPPort, qt.Equals, "9090")
	c.Assert(cfg.IsProduction(), qt.IsTrue)
	c.Assert(cfg.DefaultMinStock, qt.Equals, 10)
	c.Assert(cfg.DefaultMaxStock, qt.Equals, 500)
	c.Assert(cfg.AuthRatePerSecond, qt.Equals, 2.5)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{"JWT_SECRET": ""},
			wantErr: config.ErrMissingJWTSecret.Error(),
		},
		{
			name:    "short secret",
			env:     map[string]string{"JWT_SECRET": "corto"},
			wantErr: config.ErrShortJWTSecret.Error(),
		},
		{
			name:    "bad min stock",
			env:     map[string]string{"JWT_SECRET": secret, "DEFAULT_MIN_STOCK": "cinco"},
			wantErr: "DEFAULT_MIN_STOCK",
		},
		{
			name:    "negative max stock",
			env:     map[string]string{"JWT_SECRET": secret, "DEFAULT_MAX_STOCK": "-1"},
			wantErr: "negativos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			c.Assert(err, qt.IsNotNil)
			c.Assert(strings.Contains(err.Error(), tt.wantErr), qt.IsTrue, qt.Commentf("error: %v", err))
		})
	}
}
