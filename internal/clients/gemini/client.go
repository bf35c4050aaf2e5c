// Package gemini provides a client for the Google Gemini API, used for
// narrative stock analysis and vision-based transaction extraction.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/interfaces"
)

const (
	DefaultModel = "gemini-2.0-flash"

	// Retry policy for transient upstream failures: 5 attempts total,
	// delay starting at 2s and doubling.
	retryAttempts     = 5
	retryInitialDelay = 2 * time.Second
)

// ErrMalformedOutput is returned when the model responds with text that
// does not parse as the requested JSON shape. The raw text is logged for
// diagnostics; callers fall back to stale cache or formula results.
var ErrMalformedOutput = errors.New("malformed model output")

// Client implements the LLMClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// isRetryable reports whether the error is a transient upstream signal
// worth retrying (rate limits and server-side failures). Everything else
// propagates immediately.
func isRetryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	return false
}

// generate runs a content generation with the retry policy applied.
func (c *Client) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = retryInitialDelay << (retryAttempts - 1)

	var text string
	operation := func() error {
		result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			if isRetryable(err) {
				c.logger.Warn().Err(err).Msg("Transient Gemini error, retrying")
				return err
			}
			return backoff.Permanent(err)
		}

		text, err = extractTextFromResponse(result)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, retryAttempts-1), ctx))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return text, nil
}

// GenerateJSON prompts the model for a strict-JSON response and
// unmarshals it into dest.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, dest interface{}) error {
	c.logger.Debug().Str("model", c.model).Msg("Generating JSON content")

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	text, err := c.generate(ctx, genai.Text(prompt), config)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(stripFences(text)), dest); err != nil {
		c.logger.Error().Err(err).Str("raw", text).Msg("Model output failed JSON parse")
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

// ExtractFromImage sends a base64-encoded image with an extraction
// prompt and unmarshals the JSON response into dest.
func (c *Client) ExtractFromImage(ctx context.Context, imageBase64 string, prompt string, dest interface{}) error {
	c.logger.Debug().Str("model", c.model).Msg("Extracting structured data from image")

	// Accept data-URI payloads from browser clients.
	if idx := strings.Index(imageBase64, ","); idx >= 0 && strings.HasPrefix(imageBase64, "data:") {
		imageBase64 = imageBase64[idx+1:]
	}

	imageData, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return fmt.Errorf("invalid base64 image: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(imageData, "image/png"),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	text, err := c.generate(ctx, contents, config)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(stripFences(text)), dest); err != nil {
		c.logger.Error().Err(err).Str("raw", text).Msg("Model output failed JSON parse")
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

// stripFences removes markdown code fences the model sometimes wraps
// around JSON despite the response MIME type.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// Ensure Client implements LLMClient
var _ interfaces.LLMClient = (*Client)(nil)
