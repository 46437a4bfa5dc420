package llm

import (
	"context"
	"sync"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

const mockName = "mock"

// MockResponse is the canned answer of a mock backend with no script
const MockResponse = `{
  "title": "Alliance Chemical Example Product - 1 Gallon",
  "bullets": ["Specifications: Example • CAS 00-00-0", "Applications: General solvent use"],
  "description": "Example description. Always follow the SDS and use appropriate PPE.",
  "backend_search_terms": "example solvent chemical",
  "a_plus_markdown": "# A+ Draft: Example\n\nSafety: Always follow the SDS.",
  "a_plus": {"version": 1, "modules": []}
}`

// MockBackend answers from a fixed script without network access.
// Answers are returned in order and the last one repeats.
type MockBackend struct {
	mu        sync.Mutex
	responses []string
	requests  []domain.RewriteRequest
}

// NewMockBackend creates a mock backend. Without responses it always returns MockResponse.
func NewMockBackend(responses ...string) *MockBackend {
	if len(responses) == 0 {
		responses = []string{MockResponse}
	}
	return &MockBackend{responses: responses}
}

func (m *MockBackend) Name() string {
	return mockName
}

func (m *MockBackend) Generate(ctx context.Context, req domain.RewriteRequest) (*domain.RewriteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := min(len(m.requests), len(m.responses)-1)
	m.requests = append(m.requests, req)
	return &domain.RewriteResponse{Text: m.responses[i], Raw: map[string]any{"mock": true}}, nil
}

// Requests returns the requests received so far
func (m *MockBackend) Requests() []domain.RewriteRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RewriteRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
