package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
	"github.com/cruz1171975/amazonenrichment/internal/infrastructure/cache"
	"github.com/cruz1171975/amazonenrichment/internal/jsonvalue"
	"github.com/cruz1171975/amazonenrichment/internal/logging"
	"github.com/cruz1171975/amazonenrichment/internal/usecase"
)

const (
	serviceName    = "amazonenrichment"
	serviceVersion = "1.0.0"
)

// CacheStats is implemented by caches that report hit statistics
type CacheStats interface {
	Stats() cache.Stats
}

// Services are the use cases served over HTTP. Rewriter and Cache may be nil.
type Services struct {
	Listings *usecase.ListingService
	Keywords *usecase.KeywordService
	Exports  *usecase.ExportService
	Rewriter *usecase.RewriteService
	Cache    CacheStats
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	listings *usecase.ListingService
	keywords *usecase.KeywordService
	exports  *usecase.ExportService
	rewriter *usecase.RewriteService
	cache    CacheStats
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(services Services, logger *zap.Logger) *Handler {
	listings := services.Listings
	if listings == nil {
		listings = usecase.NewListingService(nil, usecase.ListingServiceConfig{}, logger)
	}
	keywords := services.Keywords
	if keywords == nil {
		keywords = usecase.NewKeywordService(listings.Scanner())
	}
	exports := services.Exports
	if exports == nil {
		exports = usecase.NewExportService(listings.Scanner(), usecase.ExportConfig{})
	}
	return &Handler{
		listings: listings,
		keywords: keywords,
		exports:  exports,
		rewriter: services.Rewriter,
		cache:    services.Cache,
		logger:   logging.OrNop(logger),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":          "healthy",
		"service":         serviceName,
		"version":         serviceVersion,
		"catalog_version": h.listings.Scanner().Catalog().Version(),
		"rewrite_enabled": h.rewriter != nil,
	}
	if h.cache != nil {
		resp["cache"] = h.cache.Stats()
	}
	c.JSON(http.StatusOK, resp)
}

// ScanCompliance scans either free text or a structured listing payload.
// The body is parsed order-preserving so findings follow the payload order.
func (h *Handler) ScanCompliance(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	body, err := jsonvalue.Parse(raw)
	if err != nil || body.Kind() != jsonvalue.KindObject {
		h.respondError(c, fmt.Errorf("%w: body must be a JSON object", domain.ErrInvalidRequest))
		return
	}

	var cfg domain.ScanConfig
	if allow, ok := body.Get("allow_grade_terms_from_product_name"); ok {
		cfg.AllowGradeTermsFromProductName, _ = allow.Str()
	}

	scanner := h.listings.Scanner()
	var findings []domain.Finding
	if payload, ok := body.Get("payload"); ok && payload.Kind() != jsonvalue.KindNull {
		findings = scanner.ScanListingFields(payload, cfg)
	} else if text, ok := body.Get("text"); ok && text.Kind() == jsonvalue.KindString {
		field := "text"
		if f, ok := body.Get("field"); ok {
			if s, ok := f.Str(); ok && s != "" {
				field = s
			}
		}
		s, _ := text.Str()
		findings = scanner.ScanText(s, cfg, field)
	} else {
		h.respondError(c, fmt.Errorf("%w: either text or payload is required", domain.ErrInvalidRequest))
		return
	}

	if findings == nil {
		findings = []domain.Finding{}
	}
	c.JSON(http.StatusOK, gin.H{
		"findings": findings,
		"status":   domain.StatusFor(findings),
	})
}

type filterKeywordsRequest struct {
	Terms                          []string `json:"terms" binding:"required"`
	AllowGradeTermsFromProductName string   `json:"allow_grade_terms_from_product_name"`
}

// FilterKeywords splits keywords into safe and blocked lists
func (h *Handler) FilterKeywords(c *gin.Context) {
	var req filterKeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	safe, blocked := h.keywords.Filter(req.Terms, req.AllowGradeTermsFromProductName)
	c.JSON(http.StatusOK, gin.H{"safe": safe, "blocked": blocked})
}

// SuggestKeywords derives and filters keywords from a facts record
func (h *Handler) SuggestKeywords(c *gin.Context) {
	facts, ok := h.bindFacts(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.keywords.Suggest(facts))
}

// ValidateFacts reports facts record issues without generating anything
func (h *Handler) ValidateFacts(c *gin.Context) {
	var doc any
	if err := c.ShouldBindJSON(&doc); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	issues := usecase.ValidateFacts(doc)
	if issues == nil {
		issues = []domain.FactsIssue{}
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":  len(domain.BlockingIssues(issues)) == 0,
		"issues": issues,
	})
}

type generateRequest struct {
	Facts           map[string]any `json:"facts" binding:"required"`
	Size            string         `json:"size"`
	HTMLDescription bool           `json:"html_description"`
	IncludeDebug    bool           `json:"include_debug"`
	Rewrite         bool           `json:"rewrite"`
}

func (r generateRequest) options() domain.GenerateOptions {
	return domain.GenerateOptions{Size: r.Size, HTMLDescription: r.HTMLDescription, IncludeDebug: r.IncludeDebug}
}

// GenerateListing generates one listing, optionally rewritten by the configured backend
func (h *Handler) GenerateListing(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	if req.Rewrite && h.rewriter == nil {
		h.respondError(c, fmt.Errorf("%w: no rewrite provider configured", domain.ErrInvalidRequest))
		return
	}

	listing, err := h.listings.Generate(req.Facts, req.options())
	if err != nil {
		h.respondError(c, err)
		return
	}

	if req.Rewrite {
		listing, err = h.rewriter.Rewrite(c.Request.Context(), domain.Facts(req.Facts), listing)
		if err != nil {
			h.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, listing)
}

type batchRequest struct {
	Records         []any  `json:"records" binding:"required"`
	Size            string `json:"size"`
	HTMLDescription bool   `json:"html_description"`
	IncludeDebug    bool   `json:"include_debug"`
}

type batchItem struct {
	Index   int                  `json:"index"`
	Listing *domain.ListingDraft `json:"listing,omitempty"`
	Error   string               `json:"error,omitempty"`
	Issues  []domain.FactsIssue  `json:"issues,omitempty"`
}

// GenerateBatch generates listings for many records; failures are reported per record
func (h *Handler) GenerateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	opts := domain.GenerateOptions{Size: req.Size, HTMLDescription: req.HTMLDescription, IncludeDebug: req.IncludeDebug}
	results, err := h.listings.GenerateBatch(c.Request.Context(), req.Records, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]batchItem, len(results))
	failed := 0
	for i, r := range results {
		items[i] = batchItem{Index: i, Listing: r.Listing}
		if r.Err != nil {
			failed++
			items[i].Error = r.Err.Error()
			var vErr *domain.ValidationError
			if errors.As(r.Err, &vErr) {
				items[i].Issues = vErr.Issues
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"results": items,
		"summary": gin.H{"total": len(items), "generated": len(items) - failed, "failed": failed},
	})
}

// RenderListing renders a listing as review text
func (h *Handler) RenderListing(c *gin.Context) {
	var listing domain.ListingDraft
	if err := c.ShouldBindJSON(&listing); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	text, err := usecase.RenderListing(&listing)
	if err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	c.String(http.StatusOK, text)
}

type exportItem struct {
	Facts   map[string]any       `json:"facts" binding:"required"`
	Listing *domain.ListingDraft `json:"listing"`
}

type flatFileRequest struct {
	Headers           []string     `json:"headers" binding:"required"`
	Items             []exportItem `json:"items" binding:"required,dive"`
	Size              string       `json:"size"`
	Format            string       `json:"format"`
	AllowNoncompliant bool         `json:"allow_noncompliant"`
}

// ExportFlatFile builds flat-file rows for a category template header row.
// Items without a listing are generated first.
func (h *Handler) ExportFlatFile(c *gin.Context) {
	var req flatFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	var file domain.FlatFile
	for i, item := range req.Items {
		listing, err := h.listingFor(item, req.Size)
		if err != nil {
			h.respondError(c, fmt.Errorf("item %d: %w", i, err))
			return
		}
		keys, row, err := h.exports.FlatFileRow(req.Headers, domain.Facts(item.Facts), listing, req.AllowNoncompliant)
		if err != nil {
			h.respondError(c, fmt.Errorf("item %d: %w", i, err))
			return
		}
		file.Headers = keys
		file.Rows = append(file.Rows, row)
	}

	switch req.Format {
	case "", "json":
		c.JSON(http.StatusOK, file)
	case usecase.FormatTSV, usecase.FormatCSV:
		var buf bytes.Buffer
		if err := usecase.WriteFlatFile(&buf, file, req.Format); err != nil {
			h.respondError(c, err)
			return
		}
		contentType := "text/tab-separated-values; charset=utf-8"
		if req.Format == usecase.FormatCSV {
			contentType = "text/csv; charset=utf-8"
		}
		c.Data(http.StatusOK, contentType, buf.Bytes())
	default:
		h.respondError(c, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidRequest, req.Format))
	}
}

type patchRequest struct {
	Facts       map[string]any       `json:"facts"`
	Listing     *domain.ListingDraft `json:"listing"`
	Size        string               `json:"size"`
	ProductType string               `json:"product_type"`
}

// ExportPatch builds a listings item PATCH body
func (h *Handler) ExportPatch(c *gin.Context) {
	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	if req.Listing == nil && req.Facts == nil {
		h.respondError(c, fmt.Errorf("%w: either listing or facts is required", domain.ErrInvalidRequest))
		return
	}

	listing, err := h.listingFor(exportItem{Facts: req.Facts, Listing: req.Listing}, req.Size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.exports.BuildPatch(listing, req.ProductType))
}

func (h *Handler) listingFor(item exportItem, size string) (*domain.ListingDraft, error) {
	if item.Listing != nil {
		return item.Listing, nil
	}
	return h.listings.Generate(item.Facts, domain.GenerateOptions{Size: size})
}

// bindFacts decodes the body as a facts record, responding on failure
func (h *Handler) bindFacts(c *gin.Context) (domain.Facts, bool) {
	var doc map[string]any
	if err := c.ShouldBindJSON(&doc); err != nil {
		h.respondError(c, fmt.Errorf("%w: facts record must be a JSON object", domain.ErrInvalidRequest))
		return nil, false
	}
	return domain.Facts(doc), true
}

// respondError maps domain errors onto HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "facts record failed validation", "issues": vErr.Issues})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrComplianceRejection):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRewriteAPIFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "rewrite backend unavailable"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
