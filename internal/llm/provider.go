package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ppiankov/lepidex/internal/model"
)

// ErrURLLeak is returned when a translation cites a URL absent from the original text
var ErrURLLeak = errors.New("translation introduced url")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Translate renders one description in the requested language
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// TranslateRequest contains the input for one translation
type TranslateRequest struct {
	Source   model.Source // Where the text came from, used in the prompt
	Species  string       // Search term of the query, kept untranslated
	Text     string
	Language string // Target language, e.g. "English"

	// Prompt overrides BuildPrompt when set
	Prompt string

	// Model and MaxTokens override the provider config when set
	Model     string
	MaxTokens int
}

// TranslateResponse contains the provider's output
type TranslateResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	Timeout     time.Duration
	MaxTokens   int
	Temperature float32

	// Proxy URL; empty uses the environment
	Proxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     60 * time.Second,
		MaxTokens:   1200,
		Temperature: 0.2,
	}
}

const systemPrompt = "You translate natural history descriptions of butterflies and moths. Reply with the translation only."

// BuildPrompt constructs the default translation prompt
func BuildPrompt(req TranslateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following species description into %s.\n\n", req.Language)
	b.WriteString("RULES:\n")
	b.WriteString("1. Keep scientific names, measurements and units exactly as written.\n")
	b.WriteString("2. Keep paragraph breaks.\n")
	b.WriteString("3. Do not add facts, headings, commentary or links.\n")
	if req.Species != "" {
		fmt.Fprintf(&b, "\nSpecies: %s\n", req.Species)
	}
	if req.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", req.Source.DisplayName())
	}
	b.WriteString("\nText:\n")
	b.WriteString(req.Text)
	return b.String()
}

// resolve fills request defaults from the provider config
func (c Config) resolve(req TranslateRequest, defaultModel string) (prompt, modelName string, maxTokens int) {
	prompt = req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req)
	}

	modelName = req.Model
	if modelName == "" {
		modelName = c.Model
	}
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1200
	}
	return prompt, modelName, maxTokens
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)]+`)

// extractURLs returns the distinct http(s) URLs in text
func extractURLs(text string) []string {
	var unique []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;:!?")
		if !slices.Contains(unique, u) {
			unique = append(unique, u)
		}
	}
	return unique
}

// checkURLs rejects translations that cite URLs the original did not contain
func checkURLs(original, translated string) error {
	allowed := extractURLs(original)
	for _, u := range extractURLs(translated) {
		if !slices.Contains(allowed, u) {
			return fmt.Errorf("%w: %s", ErrURLLeak, u)
		}
	}
	return nil
}
