// Package gemini wraps the Google Gen AI SDK for the structured-output calls
// made by the plan generator and the OCR fallback.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/ai-nutricare/backend/internal/logging"
)

// DefaultModel is the model used for meal-plan generation.
const DefaultModel = "gemini-2.5-flash-lite"

var logger = logging.Logger(logging.SourcePlanner)

// Config configures a Client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // override for tests and proxies
	Retry   RetryConfig
}

// Request is a single structured-output generation request.
type Request struct {
	Prompt          string
	Document        []byte // optional inline attachment
	DocumentMIME    string
	Schema          *genai.Schema
	Temperature     float32
	MaxOutputTokens int32
}

// Client issues JSON-constrained GenerateContent calls.
type Client struct {
	models *genai.Models
	model  string
	retry  RetryConfig
}

// NewClient creates a Client. The API key must come from configuration;
// there is no fallback credential.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &Error{Code: ErrNotConfigured, Message: "Gemini API key is not configured"}
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{models: client.Models, model: model, retry: cfg.Retry}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// GenerateJSON runs the request and returns the raw JSON text of the first
// candidate. Failures are returned as *Error.
func (c *Client) GenerateJSON(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{{Text: req.Prompt}}
	if len(req.Document) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: req.Document, MIMEType: req.DocumentMIME},
		})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
		Temperature:      &temperature,
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = req.MaxOutputTokens
	}

	return WithRetry(ctx, c.retry, func(ctx context.Context) (string, error) {
		result, err := c.models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			gerr := classifyError(err)
			logger.Warn("generate content failed", "model", c.model, "code", gerr.Code, "retryable", gerr.Retryable, "err", err)
			return "", gerr
		}

		text := strings.TrimSpace(result.Text())
		if text == "" {
			return "", &Error{Code: ErrEmptyResponse, Message: "Gemini returned an empty response", Retryable: true}
		}
		return text, nil
	})
}
