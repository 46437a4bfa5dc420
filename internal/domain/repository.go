package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RewriteRequest is a prompt sent to a text-generation backend
type RewriteRequest struct {
	Model  string
	Prompt string
}

// RewriteResponse is the raw text a backend returned
type RewriteResponse struct {
	Text string
	Raw  map[string]any
}

// RewriteBackend is a pluggable text-generation service used to rewrite listing copy.
// Its output is untrusted and always re-scanned before use.
type RewriteBackend interface {
	Name() string
	Generate(ctx context.Context, req RewriteRequest) (*RewriteResponse, error)
}
