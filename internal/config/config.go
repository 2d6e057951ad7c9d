package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalidValue    = errors.New("invalid configuration value")
)

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"brainweave"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"brainweave"`

	NSQLookupd    string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost      string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP      string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`
	NSQMaxMsgSize int64  `envconfig:"NSQ_MAX_MSG_SIZE" default:"10485760"` // 10MB

	// Artifact storage
	StagingDir string `envconfig:"KNOWLEDGE_VAULT_STAGING_DIR" default:"data/staging"`
	VaultDir   string `envconfig:"KNOWLEDGE_VAULT_DIR" default:"data/vault"`

	// LLM providers
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	DefaultProvider string `envconfig:"DEFAULT_PROVIDER" default:"openai"`

	// Extraction
	DefaultLanguage   string `envconfig:"DEFAULT_LANGUAGE" default:"en"`
	ChunkMaxChars     int    `envconfig:"CHUNK_MAX_CHARS" default:"100000"`
	ChunkOverlap      int    `envconfig:"CHUNK_OVERLAP" default:"500"`
	LLMTimeoutSeconds int    `envconfig:"LLM_TIMEOUT_SECONDS" default:"300"`

	// Transcript retrieval
	TranscriptTimeoutSeconds   int `envconfig:"TRANSCRIPT_TIMEOUT_SECONDS" default:"60"`
	RateLimitRetryAttempts     int `envconfig:"RATE_LIMIT_RETRY_ATTEMPTS" default:"3"`
	RateLimitRetryDelaySeconds int `envconfig:"RATE_LIMIT_RETRY_DELAY_SECONDS" default:"5"`

	// Server
	ServerPort   int  `envconfig:"SERVER_PORT" default:"8000"`
	EnableAPI    bool `envconfig:"ENABLE_API" default:"true"`
	EnableWorker bool `envconfig:"ENABLE_WORKER" default:"false"`

	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.StagingDir == "" {
		return fmt.Errorf("%w: KNOWLEDGE_VAULT_STAGING_DIR", ErrMissingRequired)
	}
	if c.VaultDir == "" {
		return fmt.Errorf("%w: KNOWLEDGE_VAULT_DIR", ErrMissingRequired)
	}
	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: at least one of GEMINI_API_KEY or OPENAI_API_KEY", ErrMissingRequired)
	}
	switch c.DefaultProvider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("%w: DEFAULT_PROVIDER must be gemini or openai, got %q", ErrInvalidValue, c.DefaultProvider)
	}
	if c.ChunkMaxChars <= 0 {
		return fmt.Errorf("%w: CHUNK_MAX_CHARS must be positive", ErrInvalidValue)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkMaxChars {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be non-negative and smaller than CHUNK_MAX_CHARS", ErrInvalidValue)
	}
	return nil
}
