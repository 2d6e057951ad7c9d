package config_test

import (
	"errors"
	"testing"

	"brainweave/backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func validConfig() config.Config {
	return config.Config{
		DBHost:          "localhost",
		DBUser:          "user",
		DBName:          "db",
		StagingDir:      "data/staging",
		VaultDir:        "data/vault",
		OpenAIAPIKey:    "sk-test",
		DefaultProvider: "openai",
		ChunkMaxChars:   100000,
		ChunkOverlap:    500,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
		errIs   error
	}{
		{
			name:    "Valid Config",
			mutate:  func(c *config.Config) {},
			wantErr: false,
		},
		{
			name:    "Missing DBHost",
			mutate:  func(c *config.Config) { c.DBHost = "" },
			wantErr: true,
			errIs:   config.ErrMissingRequired,
		},
		{
			name:    "Missing Vault Dir",
			mutate:  func(c *config.Config) { c.VaultDir = "" },
			wantErr: true,
			errIs:   config.ErrMissingRequired,
		},
		{
			name:    "No API Keys",
			mutate:  func(c *config.Config) { c.OpenAIAPIKey = "" },
			wantErr: true,
			errIs:   config.ErrMissingRequired,
		},
		{
			name: "Gemini Key Alone Is Enough",
			mutate: func(c *config.Config) {
				c.OpenAIAPIKey = ""
				c.GeminiAPIKey = "g-test"
				c.DefaultProvider = "gemini"
			},
			wantErr: false,
		},
		{
			name:    "Unknown Provider",
			mutate:  func(c *config.Config) { c.DefaultProvider = "anthropic" },
			wantErr: true,
			errIs:   config.ErrInvalidValue,
		},
		{
			name:    "Zero Chunk Size",
			mutate:  func(c *config.Config) { c.ChunkMaxChars = 0 },
			wantErr: true,
			errIs:   config.ErrInvalidValue,
		},
		{
			name:    "Overlap Not Smaller Than Chunk Size",
			mutate:  func(c *config.Config) { c.ChunkOverlap = c.ChunkMaxChars },
			wantErr: true,
			errIs:   config.ErrInvalidValue,
		},
		{
			name:    "Negative Overlap",
			mutate:  func(c *config.Config) { c.ChunkOverlap = -1 },
			wantErr: true,
			errIs:   config.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errIs != nil {
					assert.True(t, errors.Is(err, tt.errIs))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
