package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Summarizer providers.
const (
	providerNone   = "none"
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

// Config holds all configuration for the patternfind server.
type Config struct {
	Port string `yaml:"port"`

	// Grid size limits applied to every resize and workspace creation.
	MinSize int `yaml:"min_size"`
	MaxSize int `yaml:"max_size"`

	// Sizes used when a workspace is created without explicit sizes.
	DefaultPattern SizeConfig `yaml:"default_pattern"`
	DefaultSearch  SizeConfig `yaml:"default_search"`

	Summarizer SummarizerConfig `yaml:"summarizer"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// SizeConfig is a grid size in the config file.
type SizeConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// SummarizerConfig selects and configures the explanation backend.
type SummarizerConfig struct {
	// Provider is "gemini", "openai" or "none". Empty picks whichever
	// backend has credentials, Gemini first.
	Provider string        `yaml:"provider"`
	Timeout  time.Duration `yaml:"timeout"`

	GCPProject   string `yaml:"gcp_project"`
	GCPRegion    string `yaml:"gcp_region"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`
}

// RateLimitConfig holds per-IP request budgets.
type RateLimitConfig struct {
	EditsPerSecond    int `yaml:"edits_per_second"`
	ExplainsPerMinute int `yaml:"explains_per_minute"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           "8080",
		MinSize:        2,
		MaxSize:        12,
		DefaultPattern: SizeConfig{Rows: 3, Cols: 3},
		DefaultSearch:  SizeConfig{Rows: 8, Cols: 8},
		Summarizer: SummarizerConfig{
			Timeout:     30 * time.Second,
			GeminiModel: defaultModel,
			OpenAIModel: defaultOpenAIModel,
		},
		RateLimit: RateLimitConfig{
			EditsPerSecond:    60,
			ExplainsPerMinute: 5,
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// and the environment, in that order of precedence.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("PATTERNFIND_CONFIG")
	}
	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := loadConfigEnv(cfg); err != nil {
		return nil, fmt.Errorf("load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadConfigEnv(cfg *Config) error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Port, "PORT")
	setString(&cfg.Summarizer.Provider, "PATTERNFIND_SUMMARIZER")
	setString(&cfg.Summarizer.GCPProject, "GCP_PROJECT_ID")
	setString(&cfg.Summarizer.GCPRegion, "GCP_REGION")
	setString(&cfg.Summarizer.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.Summarizer.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.Summarizer.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.Summarizer.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Summarizer.OpenAIModel, "OPENAI_MODEL")

	if v := os.Getenv("PATTERNFIND_MAX_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PATTERNFIND_MAX_SIZE: %w", err)
		}
		cfg.MaxSize = n
	}

	if v := os.Getenv("PATTERNFIND_SUMMARIZER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PATTERNFIND_SUMMARIZER_TIMEOUT: %w", err)
		}
		cfg.Summarizer.Timeout = d
	}
	return nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.MinSize < 1 {
		return fmt.Errorf("min_size must be at least 1")
	}
	if c.MaxSize < c.MinSize {
		return fmt.Errorf("max_size (%d) must be >= min_size (%d)", c.MaxSize, c.MinSize)
	}
	for name, s := range map[string]SizeConfig{
		"default_pattern": c.DefaultPattern,
		"default_search":  c.DefaultSearch,
	} {
		if !c.sizeAllowed(s.Rows) || !c.sizeAllowed(s.Cols) {
			return fmt.Errorf("%s %dx%d outside [%d, %d]", name, s.Rows, s.Cols, c.MinSize, c.MaxSize)
		}
	}

	switch c.Summarizer.Provider {
	case "", providerNone, providerGemini, providerOpenAI:
	default:
		return fmt.Errorf("unknown summarizer provider %q", c.Summarizer.Provider)
	}
	if c.Summarizer.Timeout < 0 {
		return fmt.Errorf("summarizer.timeout must be non-negative")
	}
	if c.RateLimit.EditsPerSecond < 1 || c.RateLimit.ExplainsPerMinute < 1 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}

func (c *Config) sizeAllowed(n int) bool {
	return n >= c.MinSize && n <= c.MaxSize
}
