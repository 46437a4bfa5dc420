package usecase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

// loadFactsDoc decodes a testdata facts file into its generic JSON form
func loadFactsDoc(t *testing.T, name string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func loadFacts(t *testing.T, name string) domain.Facts {
	t.Helper()
	return domain.Facts(loadFactsDoc(t, name))
}

// minimalFacts is the smallest record that passes validation
func minimalFacts() map[string]any {
	return map[string]any{
		"sku":          "SKU-1",
		"product_name": "Citric Acid Anhydrous",
		"brand":        "Acme",
	}
}
