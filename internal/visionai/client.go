package visionai

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/example/photo-inspect/internal/metrics"
)

// NotConfiguredMessage is rendered in place of an analysis when no API
// key is available. Callers of the single-prompt path always receive a
// string to display, never an error.
const NotConfiguredMessage = "OpenAI API key not configured. Please set OPENAI_API_KEY environment variable."

// ErrNotConfigured is returned by the multi-rule path when no API key
// was supplied at startup.
var ErrNotConfigured = fmt.Errorf("vision capability not configured")

// Candidate models for the single-prompt path, in preference order.
var fallbackModels = []string{
	"gpt-4.1-mini",
	"gpt-4o-mini",
	"gpt-4o",
}

// Client adapts the hosted OpenAI vision API. A client built without an
// API key stays usable: every call degrades to a descriptive fallback.
type Client struct {
	api        *openai.Client
	multiModel string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient builds a vision client. An empty apiKey yields an
// unconfigured client; multiModel defaults to gpt-4.1 when empty.
func NewClient(apiKey, multiModel string, timeout time.Duration, logger *zap.Logger) *Client {
	c := &Client{
		multiModel: multiModel,
		timeout:    timeout,
		logger:     logger.Named("visionai"),
	}
	if c.multiModel == "" {
		c.multiModel = "gpt-4.1"
	}
	if c.timeout <= 0 {
		c.timeout = 60 * time.Second
	}
	if apiKey == "" {
		c.logger.Warn("OpenAI API key not found; vision rules will degrade")
		return c
	}
	c.api = openai.NewClient(apiKey)
	c.logger.Info("OpenAI vision client initialized", zap.String("multi_model", c.multiModel))
	return c
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool {
	return c != nil && c.api != nil
}

// Analyze runs the single-prompt legacy path: candidate models are
// tried in preference order and the first success is returned prefixed
// with the model name. When everything fails the error is folded into
// the returned string so the caller can still render something.
func (c *Client) Analyze(ctx context.Context, imageBytes []byte, prompt string) string {
	if !c.Configured() {
		c.logger.Warn("vision analysis requested without configured client")
		return NotConfiguredMessage
	}

	var lastErr error
	for _, model := range fallbackModels {
		c.logger.Info("attempting vision model", zap.String("model", model))
		content, err := c.complete(ctx, model, chatRequest{
			system:      "You are a vehicle photo quality inspector.",
			user:        prompt,
			imageBytes:  imageBytes,
			maxTokens:   300,
			temperature: 0.1,
			detailHigh:  true,
		})
		if err == nil {
			metrics.VisionRequests.WithLabelValues("single", "ok").Inc()
			return fmt.Sprintf("[Model: %s] %s", model, content)
		}
		lastErr = err
		c.logger.Warn("vision model failed, trying next",
			zap.String("model", model), zap.Error(err))
	}

	metrics.VisionRequests.WithLabelValues("single", "error").Inc()
	c.logger.Error("all vision models failed", zap.Error(lastErr))
	return fmt.Sprintf("OpenAI API error: %v", lastErr)
}

// AnalyzeMulti evaluates every rule prompt in one combined request and
// returns the raw model text for downstream extraction and parsing.
func (c *Client) AnalyzeMulti(ctx context.Context, imageBytes []byte, prompts map[string]string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	content, err := c.complete(ctx, c.multiModel, chatRequest{
		system: "You are a strict dealership photo evaluator. Only respond with a raw JSON array as described. " +
			"Do not include markdown formatting, comments, or extra text. Each rule must be independently evaluated.",
		user:       BuildMultiPrompt(prompts),
		imageBytes: imageBytes,
		maxTokens:  1000,
	})
	if err != nil {
		metrics.VisionRequests.WithLabelValues("multi", "error").Inc()
		return "", err
	}
	metrics.VisionRequests.WithLabelValues("multi", "ok").Inc()
	return content, nil
}

type chatRequest struct {
	system      string
	user        string
	imageBytes  []byte
	maxTokens   int
	temperature float32
	detailHigh  bool
}

func (c *Client) complete(ctx context.Context, model string, req chatRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	imageURL := &openai.ChatMessageImageURL{
		URL: fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(req.imageBytes)),
	}
	if req.detailHigh {
		imageURL.Detail = openai.ImageURLDetailHigh
	}

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   req.maxTokens,
		Temperature: req.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.system},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: req.user},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: imageURL},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", model)
	}
	return resp.Choices[0].Message.Content, nil
}
