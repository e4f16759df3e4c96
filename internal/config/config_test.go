package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_EXPIRES_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	require.Equal(t, "HS256", cfg.JWTAlgorithm)
	require.Equal(t, 60*time.Minute, cfg.JWTAccessTTL)
	require.Equal(t, 30*time.Minute, cfg.ResetTokenTTL)
	require.True(t, cfg.UsesDevSecret())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("JWT_EXPIRES_MINUTES", "5")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, ,http://example.com")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	require.Equal(t, "HS512", cfg.JWTAlgorithm)
	require.Equal(t, 5*time.Minute, cfg.JWTAccessTTL)
	require.Equal(t, []string{"http://localhost:3000", "http://example.com"}, cfg.CORSOrigins)
	require.False(t, cfg.UsesDevSecret())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			ServerPort:     "8080",
			RequestTimeout: time.Second,
			StoreDriver:    StoreDriverMemory,
			JWTSecret:      "secret",
			JWTAlgorithm:   "HS256",
			JWTAccessTTL:   time.Hour,
			ResetTokenTTL:  30 * time.Minute,
			BcryptCost:     4,
			AdminUsername:  "admin",
			AdminEmail:     "admin@example.com",
			AdminPassword:  "adminpass",
		}
	}

	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"unknown driver":     func(c *Config) { c.StoreDriver = "mysql" },
		"asymmetric alg":     func(c *Config) { c.JWTAlgorithm = "RS256" },
		"none alg":           func(c *Config) { c.JWTAlgorithm = "none" },
		"empty secret":       func(c *Config) { c.JWTSecret = " " },
		"zero ttl":           func(c *Config) { c.JWTAccessTTL = 0 },
		"bcrypt cost":        func(c *Config) { c.BcryptCost = 2 },
		"postgres needs url": func(c *Config) { c.StoreDriver = StoreDriverPostgres; c.DatabaseURL = "" },
		"empty admin":        func(c *Config) { c.AdminPassword = "" },
	}

	for name, mutate := range cases {
		name, mutate := name, mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
