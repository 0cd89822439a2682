// Package secrets loads API keys from a local key-value file and the environment.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Recognized keys
const (
	KeyArtfakta  = "artfakta_api_key"
	KeyOpenAI    = "openai_api_key"
	KeyAnthropic = "anthropic_api_key"
)

// Secrets holds credentials. Values never appear in config output.
type Secrets struct {
	ArtfaktaAPIKey  string
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

// Load reads path as JSON or YAML (by extension, JSON when there is none).
// A missing file is not an error. LEPIDEX_<KEY> environment variables
// override file values; OPENAI_API_KEY and ANTHROPIC_API_KEY are honored too.
func Load(path string) (*Secrets, error) {
	v := viper.New()
	v.SetEnvPrefix("LEPIDEX")
	v.AutomaticEnv()
	_ = v.BindEnv(KeyOpenAI, "LEPIDEX_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv(KeyAnthropic, "LEPIDEX_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if filepath.Ext(path) == "" {
				v.SetConfigType("json")
			}
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read secrets %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat secrets %s: %w", path, err)
		}
	}

	return &Secrets{
		ArtfaktaAPIKey:  strings.TrimSpace(v.GetString(KeyArtfakta)),
		OpenAIAPIKey:    strings.TrimSpace(v.GetString(KeyOpenAI)),
		AnthropicAPIKey: strings.TrimSpace(v.GetString(KeyAnthropic)),
	}, nil
}

// LLMKey returns the API key for an LLM provider, empty when none is needed or set
func (s *Secrets) LLMKey(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return s.OpenAIAPIKey
	case "anthropic", "claude":
		return s.AnthropicAPIKey
	}
	return ""
}
