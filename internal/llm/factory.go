package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/lepidex/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables translation and returns nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown llm provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config. The API key comes
// from secrets, never from the config file.
func ConfigFromModel(cfg model.LLMConfig, apiKey, proxy string) Config {
	c := DefaultConfig()
	c.Provider = cfg.Provider
	c.Model = cfg.Model
	c.APIKey = apiKey
	c.BaseURL = cfg.BaseURL
	c.Proxy = proxy
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	if cfg.MaxTokens > 0 {
		c.MaxTokens = cfg.MaxTokens
	}
	if cfg.Temperature > 0 {
		c.Temperature = cfg.Temperature
	}
	return c
}
