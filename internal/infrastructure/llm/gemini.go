package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
	"github.com/cruz1171975/amazonenrichment/internal/logging"
)

const (
	geminiName = "gemini"

	defaultGeminiModel    = "gemini-2.5-flash"
	defaultTimeout        = 60 * time.Second
	defaultRequestsPerMin = 60
	defaultBurst          = 5
	maxRequestAttempts    = 3

	temperature     = 0.4
	maxOutputTokens = 2048
)

// GeminiBackend rewrites listing copy with the Gemini API
type GeminiBackend struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
	logger      *zap.Logger
}

// NewGeminiBackend creates a Gemini backend. A non-empty cfg.BaseURL points
// the client at another endpoint.
func NewGeminiBackend(ctx context.Context, cfg Config, logger *zap.Logger) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{},
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMin
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	return &GeminiBackend{
		client:      client,
		model:       model,
		timeout:     timeout,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(rpm)/60), burst),
		backoff:     exponentialBackoff,
		logger:      logging.OrNop(logger),
	}, nil
}

// SetDebug enables logging of prompts and raw responses
func (b *GeminiBackend) SetDebug(debug bool) {
	b.debug = debug
}

// Name returns the provider name
func (b *GeminiBackend) Name() string {
	return geminiName
}

// Model returns the default model
func (b *GeminiBackend) Model() string {
	return b.model
}

// exponentialBackoff returns the delay before retry attempt n (1-based)
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500<<(attempt-1)) * time.Millisecond
}

// Generate sends the prompt and returns the text of the first candidate.
// Rate limited; transient failures (network, 429, 5xx) are retried.
func (b *GeminiBackend) Generate(ctx context.Context, req domain.RewriteRequest) (*domain.RewriteResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = b.model
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   rewriteSchema(),
		Temperature:      genai.Ptr[float32](temperature),
		MaxOutputTokens:  maxOutputTokens,
	}
	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	if b.debug {
		b.logger.Debug("gemini request", zap.String("model", model), zap.String("prompt", req.Prompt))
	}

	var lastErr error
	for attempt := 1; attempt <= maxRequestAttempts; attempt++ {
		if err := b.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := b.client.Models.GenerateContent(ctx, model, contents, config)
		if err == nil {
			text := resp.Text()
			if b.debug {
				b.logger.Debug("gemini response", zap.Int("attempt", attempt), zap.String("text", text))
			}
			if text == "" {
				return nil, fmt.Errorf("%w: empty response", domain.ErrRewriteAPIFailure)
			}
			raw := map[string]any{"model": model}
			if len(resp.Candidates) > 0 {
				raw["finish_reason"] = string(resp.Candidates[0].FinishReason)
			}
			return &domain.RewriteResponse{Text: text, Raw: raw}, nil
		}

		lastErr = fmt.Errorf("%w: %v", domain.ErrRewriteAPIFailure, err)
		if ctx.Err() != nil || !retryable(err) {
			break
		}
		b.logger.Warn("gemini request failed, retrying", zap.Int("attempt", attempt), zap.Error(err))

		if attempt < maxRequestAttempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrRewriteAPIFailure, ctx.Err())
			case <-time.After(b.backoff(attempt)):
			}
		}
	}

	return nil, lastErr
}

// rewriteSchema describes the JSON object a rewrite answer must be
func rewriteSchema() *genai.Schema {
	stringList := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":            {Type: genai.TypeString, Description: "Listing title."},
			"bullets":          stringList("One to five bullet points."),
			"description":      {Type: genai.TypeString, Description: "Product description."},
			"backend_keywords": stringList("Short search phrases, two or three words each."),
			"a_plus_markdown":  {Type: genai.TypeString},
		},
		Required: []string{"title", "bullets"},
	}
}

// retryable reports whether a request error is worth another attempt
func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}
