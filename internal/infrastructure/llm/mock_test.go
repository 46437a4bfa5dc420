package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

func TestMockBackend_Default(t *testing.T) {
	m := NewMockBackend()
	assert.Equal(t, "mock", m.Name())

	resp, err := m.Generate(context.Background(), domain.RewriteRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, MockResponse, resp.Text)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Text), &decoded))
	assert.Equal(t, "Alliance Chemical Example Product - 1 Gallon", decoded["title"])
	assert.Len(t, decoded["bullets"], 2)
}

func TestMockBackend_Script(t *testing.T) {
	m := NewMockBackend("first", "second")

	var got []string
	for range 3 {
		resp, err := m.Generate(context.Background(), domain.RewriteRequest{Model: "m", Prompt: "p"})
		require.NoError(t, err)
		got = append(got, resp.Text)
	}

	assert.Equal(t, []string{"first", "second", "second"}, got)
	assert.Len(t, m.Requests(), 3)
	assert.Equal(t, "m", m.Requests()[0].Model)
}

func TestMockBackend_Cancelled(t *testing.T) {
	m := NewMockBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, domain.RewriteRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Requests())
}
