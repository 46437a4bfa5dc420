package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruz1171975/amazonenrichment/config"
	"github.com/cruz1171975/amazonenrichment/internal/infrastructure/cache"
	"github.com/cruz1171975/amazonenrichment/internal/infrastructure/llm"
	"github.com/cruz1171975/amazonenrichment/internal/usecase"
)

const testFacts = `{
  "sku": "CA-1",
  "product_name": "Citric Acid Anhydrous",
  "brand": "Acme",
  "chemical_identity": {"chemical_name": "Citric Acid", "cas_number": "77-92-9"},
  "applications": ["Descaling"],
  "safety_summary": {"signal_word": "Warning"},
  "packaging": {"sizes_available": ["1 lb"]}
}`

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"chrome-extension://*", "http://localhost:3000"},
		},
	}
}

// setupTestRouter creates a test router without a rewrite backend
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return SetupRouter(testConfig(), NewHandler(Services{}, nil), nil)
}

// setupRewriteRouter wires the mock rewrite backend and a memory cache
func setupRewriteRouter(t *testing.T) *gin.Engine {
	t.Helper()
	c := cache.NewMemoryCache(time.Minute)
	t.Cleanup(c.Close)

	listings := usecase.NewListingService(nil, usecase.ListingServiceConfig{}, nil)
	rewriter := usecase.NewRewriteService(llm.NewMockBackend(), c, listings.Scanner(), usecase.RewriteServiceConfig{Model: "mock-model"}, nil)
	handler := NewHandler(Services{Listings: listings, Rewriter: rewriter, Cache: c}, nil)
	return SetupRouter(testConfig(), handler, nil)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(t, router, http.MethodGet, "/health", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		response := decode(t, w)
		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "amazonenrichment" {
			t.Errorf("service = %v, want amazonenrichment", response["service"])
		}
		assert.Equal(t, "2024-01", response["catalog_version"])
		assert.Equal(t, false, response["rewrite_enabled"])
		assert.NotContains(t, response, "cache")
	})

	t.Run("reports cache stats", func(t *testing.T) {
		response := decode(t, doJSON(t, setupRewriteRouter(t), http.MethodGet, "/health", ""))
		assert.Equal(t, true, response["rewrite_enabled"])
		assert.Equal(t, map[string]any{"entries": 0.0, "hits": 0.0, "misses": 0.0}, response["cache"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(t)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := doJSON(t, router, method, "/health", "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestScanComplianceEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("scans text", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/compliance/scan", `{"text": "Kills 99.9% of germs"}`)
		require.Equal(t, http.StatusOK, w.Code)

		response := decode(t, w)
		assert.Equal(t, "fail", response["status"])
		findings := response["findings"].([]any)
		require.Len(t, findings, 2)
		first := findings[0].(map[string]any)
		assert.Equal(t, "text", first["field"])
		assert.Equal(t, "hard", first["severity"])
		assert.Equal(t, "99.9% of germs", first["match"])
	})

	t.Run("scans payload in document order", func(t *testing.T) {
		body := `{
			"allow_grade_terms_from_product_name": "Citric Acid",
			"payload": {"title": "Food Grade Citric Acid", "bullets": ["The best descaler"]}
		}`
		w := doJSON(t, router, http.MethodPost, "/api/v1/compliance/scan", body)
		require.Equal(t, http.StatusOK, w.Code)

		findings := decode(t, w)["findings"].([]any)
		require.Len(t, findings, 2)
		assert.Equal(t, "title", findings[0].(map[string]any)["field"])
		assert.Equal(t, "RULE-GRADE-UNVERIFIED", findings[0].(map[string]any)["rule_id"])
		assert.Equal(t, "bullet_1", findings[1].(map[string]any)["field"])
		assert.Equal(t, "soft", findings[1].(map[string]any)["severity"])
	})

	t.Run("clean text", func(t *testing.T) {
		response := decode(t, doJSON(t, router, http.MethodPost, "/api/v1/compliance/scan", `{"text": "Citric acid", "field": "title"}`))
		assert.Equal(t, "pass", response["status"])
		assert.Equal(t, []any{}, response["findings"])
	})

	for name, body := range map[string]string{
		"missing text and payload": `{"field": "title"}`,
		"invalid JSON":             `{"text": `,
		"not an object":            `["text"]`,
	} {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/compliance/scan", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestKeywordsEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("filter", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/keywords/filter", `{"terms": ["acetone", "disinfectant spray", "  "]}`)
		require.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, []any{"acetone"}, response["safe"])
		assert.Equal(t, []any{"disinfectant spray"}, response["blocked"])
	})

	t.Run("filter requires terms", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/keywords/filter", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("suggest", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/keywords/suggest", testFacts)
		require.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		suggested := response["suggested"].(map[string]any)
		assert.Equal(t, []any{"Citric Acid"}, suggested["primary"])
		assert.Equal(t, []any{}, response["blocked_flat"])
	})

	t.Run("suggest rejects non-object", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/keywords/suggest", `"citric acid"`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestValidateFactsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	response := decode(t, doJSON(t, router, http.MethodPost, "/api/v1/facts/validate", testFacts))
	assert.Equal(t, true, response["valid"])
	assert.Equal(t, []any{}, response["issues"])

	response = decode(t, doJSON(t, router, http.MethodPost, "/api/v1/facts/validate", `{"sku": "CA-1"}`))
	assert.Equal(t, false, response["valid"])
	issues := response["issues"].([]any)
	assert.Equal(t, "product_name", issues[0].(map[string]any)["path"])
}

func TestGenerateListingEndpoint(t *testing.T) {
	t.Run("generates a compliant listing", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(t, router, http.MethodPost, "/api/v1/listings/generate", `{"facts": `+testFacts+`, "include_debug": true}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		response := decode(t, w)
		assert.Equal(t, "Acme Citric Acid Anhydrous 1 lb", response["title"])
		assert.Equal(t, "pass", response["compliance_status"])
		assert.Len(t, response["bullets"], 5)
		assert.Contains(t, response, "debug")
		metadata := response["metadata"].(map[string]any)
		assert.Equal(t, "CA-1", metadata["sku"])
		assert.NotContains(t, metadata, "rewrite_used_fallback")
	})

	t.Run("rejects invalid facts with issues", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doJSON(t, router, http.MethodPost, "/api/v1/listings/generate", `{"facts": {"sku": "CA-1", "product_name": "Citric Acid"}}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		response := decode(t, w)
		issues := response["issues"].([]any)
		require.Len(t, issues, 1)
		assert.Equal(t, "brand", issues[0].(map[string]any)["path"])
	})

	t.Run("requires facts", func(t *testing.T) {
		w := doJSON(t, setupTestRouter(t), http.MethodPost, "/api/v1/listings/generate", `{"size": "1 lb"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rewrite without a backend", func(t *testing.T) {
		w := doJSON(t, setupTestRouter(t), http.MethodPost, "/api/v1/listings/generate", `{"facts": `+testFacts+`, "rewrite": true}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rewrite with the mock backend", func(t *testing.T) {
		router := setupRewriteRouter(t)

		w := doJSON(t, router, http.MethodPost, "/api/v1/listings/generate", `{"facts": `+testFacts+`, "rewrite": true}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		response := decode(t, w)
		assert.Equal(t, "Alliance Chemical Example Product - 1 Gallon", response["title"])
		assert.Equal(t, "example solvent chemical", response["backend_search_terms"])
		metadata := response["metadata"].(map[string]any)
		assert.Equal(t, "mock", metadata["rewrite_provider"])
		assert.Equal(t, "mock-model", metadata["rewrite_model"])
		assert.Equal(t, false, metadata["rewrite_used_fallback"])
		assert.Equal(t, 1.0, metadata["rewrite_attempts"])
	})
}

func TestGenerateBatchEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	body := `{"records": [` + testFacts + `, {"sku": "X"}, 42]}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/listings/batch", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	response := decode(t, w)
	assert.Equal(t, map[string]any{"total": 3.0, "generated": 1.0, "failed": 2.0}, response["summary"])

	results := response["results"].([]any)
	require.Len(t, results, 3)
	assert.Contains(t, results[0].(map[string]any), "listing")
	second := results[1].(map[string]any)
	assert.Equal(t, 1.0, second["index"])
	assert.NotContains(t, second, "listing")
	assert.Len(t, second["issues"], 2)
	assert.Equal(t, "$", results[2].(map[string]any)["issues"].([]any)[0].(map[string]any)["path"])
}

func TestRenderListingEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	body := `{"title": "Acme Citric Acid", "bullets": ["Citric Acid"], "description": "<p>Citric acid</p>"}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/listings/render", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# Title\nAcme Citric Acid\n\n# Bullets\n- Citric Acid\n\n# Description\nCitric acid\n", w.Body.String())
}

func TestExportEndpoints(t *testing.T) {
	router := setupTestRouter(t)
	headers := `["contribution_sku#1.value", "item_name[marketplace_id=ATVPDKIKX0DER]#1.value"]`

	t.Run("flat file as json", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/export/flatfile", `{"headers": `+headers+`, "items": [{"facts": `+testFacts+`}]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		response := decode(t, w)
		assert.Equal(t, []any{"contribution_sku#1.value", "item_name[marketplace_id=ATVPDKIKX0DER]#1.value"}, response["headers"])
		assert.Equal(t, []any{[]any{"CA-1", "Acme Citric Acid Anhydrous 1 lb"}}, response["rows"])
	})

	t.Run("flat file as tsv", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/export/flatfile", `{"format": "tsv", "headers": `+headers+`, "items": [{"facts": `+testFacts+`}]}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/tab-separated-values; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "contribution_sku#1.value\titem_name[marketplace_id=ATVPDKIKX0DER]#1.value\nCA-1\tAcme Citric Acid Anhydrous 1 lb\n", w.Body.String())
	})

	noncompliant := `{"title": "Kills germs fast", "bullets": ["Citric Acid"]}`

	t.Run("noncompliant listing refused", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/export/flatfile",
			`{"headers": `+headers+`, "items": [{"facts": `+testFacts+`, "listing": `+noncompliant+`}]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("noncompliant listing allowed", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/export/flatfile",
			`{"allow_noncompliant": true, "headers": `+headers+`, "items": [{"facts": `+testFacts+`, "listing": `+noncompliant+`}]}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []any{[]any{"CA-1", "Kills germs fast"}}, decode(t, w)["rows"])
	})

	t.Run("unknown format", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/export/flatfile", `{"format": "xlsx", "headers": `+headers+`, "items": [{"facts": `+testFacts+`}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("patch from listing", func(t *testing.T) {
		body := `{"product_type": "LAB_CHEMICAL", "listing": {"title": "T", "bullets": ["b"], "description": "d", "backend_search_terms": "a b"}}`
		w := doJSON(t, router, http.MethodPost, "/api/v1/export/patch", body)
		require.Equal(t, http.StatusOK, w.Code)

		response := decode(t, w)
		assert.Equal(t, "LAB_CHEMICAL", response["productType"])
		patches := response["patches"].([]any)
		require.Len(t, patches, 4)
		first := patches[0].(map[string]any)
		assert.Equal(t, "replace", first["op"])
		assert.Equal(t, "/attributes/item_name", first["path"])
		assert.Equal(t, []any{map[string]any{"value": "T", "marketplace_id": "ATVPDKIKX0DER", "language_tag": "en_US"}}, first["value"])
	})

	t.Run("patch from facts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/export/patch", `{"facts": `+testFacts+`}`)
		require.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.NotContains(t, response, "productType")
		assert.Len(t, response["patches"], 3)
	})

	t.Run("patch needs input", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/export/patch", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestCORSIntegration tests CORS with the full router
func TestCORSIntegration(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("preflight for API route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/listings/generate", nil)
		req.Header.Set("Origin", "chrome-extension://abcdefg12345")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNoContent)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "chrome-extension://abcdefg12345" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
	})

	t.Run("health endpoint has CORS for localhost", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
		if w.Header().Get(requestIDHeader) == "" {
			t.Errorf("%s header not set", requestIDHeader)
		}
	})
}

// TestAPIVersioning checks that only versioned API routes exist
func TestAPIVersioning(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/compliance/scan", `{"text": "x"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
