package generation

import (
	"context"
	"errors"
	"time"

	"github.com/jordanlanch/scribely/pkg/domain"
	"github.com/jordanlanch/scribely/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig for the OpenAI-compatible generator
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string  // optional, e.g. an Ollama or proxy endpoint
	Model       string  // default: gpt-4o-mini
	Temperature float32 // default: 0.7
	MaxTokens   int     // default: 2000
}

// OpenAIGenerator generates content through the chat completions API
type OpenAIGenerator struct {
	cfg    OpenAIConfig
	client *openai.Client
	logger logger.Logger
}

// NewOpenAIGenerator creates a new OpenAI-compatible generator
func NewOpenAIGenerator(cfg OpenAIConfig, log logger.Logger) *OpenAIGenerator {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if log == nil {
		log = logger.Default()
	}

	return &OpenAIGenerator{
		cfg:    cfg,
		client: newOpenAIClient(cfg.APIKey, cfg.BaseURL),
		logger: log.With("provider", "openai", "model", cfg.Model),
	}
}

func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}

// Generate sends the prompt as a single user message
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request, apiKey string) Result {
	client := g.client
	if apiKey != "" && apiKey != g.cfg.APIKey {
		client = newOpenAIClient(apiKey, g.cfg.BaseURL)
	}

	chatReq := openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	}

	g.logger.Info("Sending request to generation provider", "style", req.Style, "length", req.Length)

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, chatReq)
	duration := time.Since(start)

	if err != nil {
		if status, ok := statusFromError(err); ok {
			g.logger.Info("Received response from generation provider", "status", status, "duration", duration)
			return failedWithStatus(status)
		}
		g.logger.Error("Generation request failed", "error", err, "duration", duration)
		return Result{Err: domain.NewTransportError("API request failed", err)}
	}

	g.logger.Info("Received response from generation provider", "status", 200, "duration", duration, "tokens", resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return invalidFormat()
	}

	return Result{Text: resp.Choices[0].Message.Content}
}

func statusFromError(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}

// Ensure implementations satisfy the interface
var _ Generator = (*GeminiClient)(nil)
var _ Generator = (*OpenAIGenerator)(nil)
