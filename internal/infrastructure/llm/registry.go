// Package llm provides the text-generation backends used to rewrite listing copy.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

// Config selects and configures a backend
type Config struct {
	Provider          string
	Model             string
	APIKey            string
	BaseURL           string
	RequestsPerMinute int
	Burst             int
	Timeout           time.Duration
}

// Providers lists the accepted provider names
func Providers() []string {
	return []string{"gemini", "google", "mock", "test"}
}

// NewBackend creates the backend registered under cfg.Provider
func NewBackend(ctx context.Context, cfg Config, logger *zap.Logger) (domain.RewriteBackend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gemini", "google":
		backend, err := NewGeminiBackend(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case "mock", "test":
		return NewMockBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %s)", domain.ErrUnknownProvider, cfg.Provider, strings.Join(Providers(), ", "))
	}
}
