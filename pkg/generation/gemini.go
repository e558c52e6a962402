package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/jordanlanch/scribely/pkg/domain"
	"github.com/jordanlanch/scribely/pkg/logger"
)

const (
	// DefaultGeminiEndpoint is the generateContent endpoint of the Gemini API
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1/models/gemini-pro:generateContent"
	geminiDefaultTimeout  = 60 * time.Second
)

// GeminiConfig for the Gemini client
type GeminiConfig struct {
	Endpoint   string // default: DefaultGeminiEndpoint
	APIKey     string // used when a request carries no key of its own
	HTTPClient *http.Client
}

// GeminiClient wraps one generateContent call
type GeminiClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   logger.Logger
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(cfg GeminiConfig, log logger.Logger) *GeminiClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultGeminiEndpoint
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: geminiDefaultTimeout}
	}
	if log == nil {
		log = logger.Default()
	}

	return &GeminiClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   cfg.HTTPClient,
		logger:   log.With("provider", "gemini"),
	}
}

// Generate sends the prompt to Gemini. It never returns a Go error:
// every failure is reported through Result.Err.
func (c *GeminiClient) Generate(ctx context.Context, req Request, apiKey string) Result {
	if apiKey == "" {
		apiKey = c.apiKey
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: BuildPrompt(req)}},
		}},
	})
	if err != nil {
		return Result{Err: domain.NewInternalError(err)}
	}

	endpoint, err := c.endpointWithKey(apiKey)
	if err != nil {
		return Result{Err: domain.NewInternalError(err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{Err: domain.NewInternalError(err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Info("Sending request to generation provider", "style", req.Style, "length", req.Length)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("Generation request failed", "error", err)
		return Result{Err: domain.NewTransportError("API request failed", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Info("Received response from generation provider", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failedWithStatus(resp.StatusCode)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("Generation response is not valid JSON", "error", err)
		return invalidFormat()
	}

	text, ok := extractText(out)
	if !ok {
		return invalidFormat()
	}

	return Result{Text: text}
}

func (c *GeminiClient) endpointWithKey(apiKey string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// extractText returns candidates[0].content.parts[0].text untouched.
func extractText(out geminiResponse) (string, bool) {
	if len(out.Candidates) == 0 {
		return "", false
	}
	parts := out.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", false
	}
	return parts[0].Text, true
}
