package model

import "time"

// Config holds all runtime configuration
type Config struct {
	HTTP         HTTPConfig              `yaml:"http" mapstructure:"http"`
	Retry        RetryConfig             `yaml:"retry" mapstructure:"retry"`
	RateLimiting RateLimitConfig         `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig       `yaml:"concurrency" mapstructure:"concurrency"`
	Extraction   ExtractionConfig        `yaml:"extraction" mapstructure:"extraction"`
	Sources      map[string]SourceConfig `yaml:"sources" mapstructure:"sources"`
	Secrets      SecretsConfig           `yaml:"secrets" mapstructure:"secrets"`
	LLM          LLMConfig               `yaml:"llm" mapstructure:"llm"`
}

// HTTPConfig configures the shared HTTP client
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	Proxy         string        `yaml:"proxy" mapstructure:"proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// RetryConfig configures transient-failure retries
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
}

// RateLimitConfig configures per-host politeness
type RateLimitConfig struct {
	MinInterval time.Duration `yaml:"min_interval" mapstructure:"min_interval"`
}

// ConcurrencyConfig bounds the aggregator and batch runs
type ConcurrencyConfig struct {
	Workers      int           `yaml:"workers" mapstructure:"workers"`
	BatchWorkers int           `yaml:"batch_workers" mapstructure:"batch_workers"`
	Deadline     time.Duration `yaml:"deadline" mapstructure:"deadline"` // 0 means none
}

// ExtractionConfig tunes adapter behavior
type ExtractionConfig struct {
	Lenient           bool   `yaml:"lenient" mapstructure:"lenient"`
	WikipediaLanguage string `yaml:"wikipedia_language" mapstructure:"wikipedia_language"`
	TaxonFile         string `yaml:"taxon_file" mapstructure:"taxon_file"` // Dyntaxa Taxon.csv for Artfakta IDs
}

// SourceConfig overrides defaults for one source
type SourceConfig struct {
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	MinInterval time.Duration `yaml:"min_interval,omitempty" mapstructure:"min_interval"`
	Disabled    bool          `yaml:"disabled,omitempty" mapstructure:"disabled"`
}

// SecretsConfig locates the secrets file
type SecretsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// LLMConfig configures optional translation
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"` // "", "openai", "anthropic", "ollama"
	Model       string        `yaml:"model" mapstructure:"model"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Language    string        `yaml:"language" mapstructure:"language"` // Target language
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       20 * time.Second,
			UserAgent:     "lepidex/0.1 (+https://github.com/ppiankov/lepidex)",
			MaxBodyBytes:  5 * 1024 * 1024,
			RespectRobots: true,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    8 * time.Second,
		},
		RateLimiting: RateLimitConfig{
			MinInterval: time.Second,
		},
		Concurrency: ConcurrencyConfig{
			Workers:      3,
			BatchWorkers: 2,
		},
		Extraction: ExtractionConfig{
			WikipediaLanguage: "en",
		},
		Sources: map[string]SourceConfig{},
		Secrets: SecretsConfig{
			File: "secrets.json",
		},
		LLM: LLMConfig{
			Language:    "English",
			MaxTokens:   1200,
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
	}
}

// Source returns the override block for src, zero if unset
func (c *Config) Source(src Source) SourceConfig {
	if c.Sources == nil {
		return SourceConfig{}
	}
	return c.Sources[string(src)]
}
