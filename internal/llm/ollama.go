package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/ppiankov/lepidex/internal/util"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaProvider implements the Provider interface for Ollama local models
type OllamaProvider struct {
	client *resty.Client
	config Config
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`

	// Token counts, present when done
	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}

	proxy, err := util.NewProxyFunc(config.Proxy)
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(config.timeout()).
		SetTransport(&http.Transport{Proxy: proxy}).
		SetHeader("Content-Type", "application/json")

	return &OllamaProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks that the Ollama server answers
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	resp, err := p.client.R().SetContext(ctx).Get("/api/tags")
	return err == nil && resp.IsSuccess()
}

// Translate uses the non-streaming generate endpoint
func (p *OllamaProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	prompt, modelName, maxTokens := p.config.resolve(req, "llama3.1")

	var result ollamaResponse
	var apiErr ollamaError
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(ollamaRequest{
			Model:  modelName,
			Prompt: prompt,
			System: systemPrompt,
			Options: ollamaOptions{
				Temperature: float64(p.config.Temperature),
				NumPredict:  maxTokens,
			},
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/generate")
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return nil, fmt.Errorf("ollama api error (%d): %s", resp.StatusCode(), apiErr.Error)
		}
		return nil, fmt.Errorf("ollama api error (%d): %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	text := strings.TrimSpace(result.Response)
	if text == "" {
		return nil, errors.New("empty response from ollama")
	}

	if result.Model != "" {
		modelName = result.Model
	}
	return &TranslateResponse{
		Text:       text,
		Model:      modelName,
		TokensUsed: result.PromptEvalCount + result.EvalCount,
	}, nil
}
