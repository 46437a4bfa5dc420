package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, "2024-01", c.Version())
	assert.Equal(t, 118, c.Len())
	assert.Same(t, c, DefaultCatalog())

	terms := c.Terms()
	assert.Equal(t, domain.BlockedTerm{RuleID: "A", Severity: domain.SeverityHard, Category: "antimicrobial", Term: "disinfect"}, terms[0])
	assert.Equal(t, domain.BlockedTerm{RuleID: "G", Severity: domain.SeveritySoft, Category: "superiority", Term: "unbeatable"}, terms[len(terms)-1])

	// Terms returns a copy
	terms[0].Term = "mutated"
	assert.Equal(t, "disinfect", c.Terms()[0].Term)
}

func TestCatalog_TermsFor(t *testing.T) {
	c := DefaultCatalog()

	soft := c.TermsFor(domain.SeveritySoft)
	assert.Len(t, soft, 26)
	assert.Contains(t, soft, "#1")
	assert.NotContains(t, soft, "disinfectant")

	hard := c.TermsFor(domain.SeverityHard)
	assert.Contains(t, hard, "fda approved")
}

func TestParseCatalog(t *testing.T) {
	t.Run("parses groups in order", func(t *testing.T) {
		c, err := ParseCatalog([]byte(`
version: test
groups:
  - id: X
    severity: soft
    category: demo
    terms: [alpha, "beta gamma"]
  - id: Y
    severity: hard
    category: other
    terms: [delta]
`))
		require.NoError(t, err)
		assert.Equal(t, "test", c.Version())
		require.Equal(t, 3, c.Len())
		assert.Equal(t, "beta gamma", c.Terms()[1].Term)
		assert.Equal(t, "Y", c.Terms()[2].RuleID)
	})

	t.Run("rejects unknown severity", func(t *testing.T) {
		_, err := ParseCatalog([]byte(`
groups:
  - id: X
    severity: medium
    terms: [alpha]
`))
		assert.Error(t, err)
	})

	t.Run("rejects group without id", func(t *testing.T) {
		_, err := ParseCatalog([]byte(`
groups:
  - severity: hard
    terms: [alpha]
`))
		assert.Error(t, err)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := ParseCatalog([]byte("groups: [unclosed"))
		assert.Error(t, err)
	})
}
