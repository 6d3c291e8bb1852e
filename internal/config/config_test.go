package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:            "8080",
		Env:             "development",
		SessionSecret:   "change-me-before-production",
		SessionTTLHours: 72,
		DBDriver:        "sqlite",
		DBPath:          "blog.db",
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsMissingValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Port = "" }},
		{"missing secret", func(c *Config) { c.SessionSecret = "" }},
		{"non-positive ttl", func(c *Config) { c.SessionTTLHours = 0 }},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }},
		{"postgres without host", func(c *Config) {
			c.DBDriver = "postgres"
			c.DBHost = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateProductionSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")

	cfg.SessionSecret = "short"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 characters")

	cfg.SessionSecret = strings.Repeat("s", 40)
	assert.NoError(t, cfg.Validate())
}

func TestValidateProductionPostgresPassword(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.SessionSecret = strings.Repeat("s", 40)
	cfg.DBDriver = "postgres"
	cfg.DBHost = "db.internal"
	cfg.DBName = "blog"
	cfg.DBPassword = "password"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")

	cfg.DBPassword = "an-actual-secret"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 72, cfg.SessionTTLHours)
	assert.Equal(t, "web/templates", cfg.TemplateDir)
}
