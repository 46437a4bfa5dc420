package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  error
	}{
		{name: "gemini", cfg: Config{Provider: "gemini", APIKey: "k"}, wantName: "gemini"},
		{name: "google alias", cfg: Config{Provider: " Google ", APIKey: "k"}, wantName: "gemini"},
		{name: "mock", cfg: Config{Provider: "mock"}, wantName: "mock"},
		{name: "test alias", cfg: Config{Provider: "TEST"}, wantName: "mock"},
		{name: "unknown", cfg: Config{Provider: "openai"}, wantErr: domain.ErrUnknownProvider},
		{name: "empty", cfg: Config{}, wantErr: domain.ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := NewBackend(context.Background(), tt.cfg, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, backend)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, backend.Name())
		})
	}
}

func TestNewBackend_GeminiNeedsKey(t *testing.T) {
	backend, err := NewBackend(context.Background(), Config{Provider: "gemini"}, nil)
	assert.Error(t, err)
	assert.Nil(t, backend)
}
