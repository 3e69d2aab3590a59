package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultGeminiModel is the default cloud model
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultGeminiBaseURL is Gemini's OpenAI-compatible endpoint
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	// DefaultOllamaModel is the default local model
	DefaultOllamaModel = "llama3"
	// DefaultOllamaHost is the default local inference server
	DefaultOllamaHost = "http://127.0.0.1:11434"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
type OpenAIProvider struct {
	name      string
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// OpenAIConfig configures an OpenAIProvider
type OpenAIConfig struct {
	Name      string
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	Logger    *zap.Logger
	DebugMode bool
}

// NewOpenAIProvider creates a provider. Retries are disabled: a failed call
// is handed to the next provider in the fallback chain instead.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	)

	if cfg.DebugMode {
		logger.Debug("ai_provider_configured",
			zap.String("provider", cfg.Name),
			zap.String("model", cfg.Model),
			zap.String("base_url", cfg.BaseURL),
			zap.String("api_key", SanitizeAPIKey(cfg.APIKey)),
		)
	}

	return &OpenAIProvider{
		name:      cfg.Name,
		client:    client,
		model:     cfg.Model,
		logger:    logger,
		debugMode: cfg.DebugMode,
	}
}

// NewGeminiProvider creates the cloud provider
func NewGeminiProvider(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return NewOpenAIProvider(OpenAIConfig{
		Name:      ProviderGemini,
		APIKey:    apiKey,
		BaseURL:   baseURL,
		Model:     model,
		Timeout:   timeout,
		Logger:    logger,
		DebugMode: debugMode,
	})
}

// NewOllamaProvider creates the local provider against Ollama's /v1 endpoint
func NewOllamaProvider(host, model string, timeout time.Duration, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return NewOpenAIProvider(OpenAIConfig{
		Name: ProviderOllama,
		// Ollama ignores the key but the client requires one.
		APIKey:    "ollama",
		BaseURL:   strings.TrimRight(host, "/") + "/v1/",
		Model:     model,
		Timeout:   timeout,
		Logger:    logger,
		DebugMode: debugMode,
	})
}

// Name implements Provider
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Complete implements Provider
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	// Convert messages to OpenAI format, system prompt first
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	requestID := ExtractRequestID(ctx)

	// Log request if debug mode enabled
	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("provider", p.name),
			zap.String("operation", req.Operation),
			zap.String("model", p.model),
			zap.Int("message_count", len(messages)),
			zap.String("prompt_preview", SanitizePrompt(lastContent(req.Messages), true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		// Temperature omitted, Gemini and some Ollama models reject non-default values
	})
	latency := time.Since(start)
	if err != nil {
		if p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("provider", p.name),
				zap.String("operation", req.Operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		// Keeps the *openai.Error so callers can read the status code
		return "", newProviderError(p.name, req.Operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: p.name, Op: req.Operation, Err: fmt.Errorf("%s: %w", ErrNoChoicesInResponse, ErrEmptyResponse)}
	}

	content := resp.Choices[0].Message.Content

	// Log response if debug mode enabled
	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("provider", p.name),
			zap.String("operation", req.Operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// Ping lists models to check the endpoint is reachable
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return newProviderError(p.name, "ping", err)
	}
	return nil
}

func lastContent(messages []ChatMessage) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Content
}

var _ Pinger = (*OpenAIProvider)(nil)
