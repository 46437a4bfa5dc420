package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cruz1171975/amazonenrichment/internal/compliance"
	"github.com/cruz1171975/amazonenrichment/internal/domain"
	"github.com/cruz1171975/amazonenrichment/internal/jsonvalue"
	"github.com/cruz1171975/amazonenrichment/internal/logging"
)

// RewriteServiceConfig holds configuration for the rewrite service
type RewriteServiceConfig struct {
	Model       string
	MaxAttempts int
	CacheTTL    time.Duration
	Limits      ListingLimits
}

// RewriteService asks a text-generation backend to polish a generated
// listing. Candidates are untrusted: each one is parsed, normalized to the
// field limits and re-scanned, and the deterministic listing is kept when no
// attempt produces a compliant candidate.
type RewriteService struct {
	backend     domain.RewriteBackend
	cache       domain.CacheRepository
	scanner     *compliance.Scanner
	model       string
	maxAttempts int
	cacheTTL    time.Duration
	limits      ListingLimits
	logger      *zap.Logger
}

// NewRewriteService creates a rewrite service. cache may be nil.
func NewRewriteService(
	backend domain.RewriteBackend,
	cache domain.CacheRepository,
	scanner *compliance.Scanner,
	config RewriteServiceConfig,
	logger *zap.Logger,
) *RewriteService {
	if scanner == nil {
		scanner = compliance.DefaultScanner()
	}
	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	return &RewriteService{
		backend:     backend,
		cache:       cache,
		scanner:     scanner,
		model:       config.Model,
		maxAttempts: maxAttempts,
		cacheTTL:    cacheTTL,
		limits:      config.Limits.withDefaults(),
		logger:      logging.OrNop(logger),
	}
}

// Rewrite returns either a compliant rewritten copy of base or, after
// maxAttempts rejected candidates, a copy of base marked as a fallback.
// Only context cancellation is reported as an error.
func (s *RewriteService) Rewrite(ctx context.Context, facts domain.Facts, base *domain.ListingDraft) (*domain.ListingDraft, error) {
	productName := Clean(facts.Text("product_name"))
	cfg := domain.ScanConfig{AllowGradeTermsFromProductName: productName}
	forbidden := s.scanner.ForbiddenTerms()

	var feedback []domain.Finding
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate, findings, err := s.attempt(ctx, facts, base, forbidden, feedback, cfg)
		if err == nil {
			s.logger.Info("rewrite accepted",
				zap.String("sku", base.Metadata.SKU),
				zap.String("provider", s.backend.Name()),
				zap.Int("attempt", attempt))
			s.stamp(candidate, false, attempt)
			return candidate, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		s.logger.Warn("rewrite attempt rejected",
			zap.String("sku", base.Metadata.SKU),
			zap.Int("attempt", attempt),
			zap.Error(err))
		feedback = findings
	}

	s.logger.Info("rewrite fell back to generated listing",
		zap.String("sku", base.Metadata.SKU),
		zap.Int("attempts", s.maxAttempts))

	fallback := *base
	s.stamp(&fallback, true, s.maxAttempts)
	return &fallback, nil
}

// attempt runs one prompt/parse/normalize/scan round. On a compliance
// rejection it also returns the hard findings for the next prompt.
func (s *RewriteService) attempt(
	ctx context.Context,
	facts domain.Facts,
	base *domain.ListingDraft,
	forbidden []string,
	feedback []domain.Finding,
	cfg domain.ScanConfig,
) (*domain.ListingDraft, []domain.Finding, error) {
	prompt, err := BuildRewritePrompt(facts, base, forbidden, s.limits, feedback)
	if err != nil {
		return nil, nil, err
	}

	text, cached, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, nil, err
	}

	candidate, err := s.parseCandidate(text, base, cfg)
	if err != nil {
		return nil, nil, err
	}

	findings := s.scanner.ScanListing(candidate, cfg)
	if findings == nil {
		findings = []domain.Finding{}
	}
	candidate.ComplianceFindings = findings
	candidate.ComplianceStatus = domain.StatusFor(findings)
	if domain.HasHardFinding(findings) {
		var hard []domain.Finding
		for _, f := range findings {
			if f.Severity == domain.SeverityHard {
				hard = append(hard, f)
			}
		}
		return nil, hard, fmt.Errorf("%w: %d hard findings", domain.ErrRewriteFailed, len(hard))
	}

	if !cached {
		s.remember(ctx, prompt, text)
	}
	return candidate, nil, nil
}

// generate calls the backend, serving repeated prompts from the cache.
// cached reports whether text came from the cache.
func (s *RewriteService) generate(ctx context.Context, prompt string) (text string, cached bool, err error) {
	if s.cache != nil {
		key := s.cacheKey(prompt)
		if hit, err := s.cache.Get(ctx, key); err == nil {
			if text, ok := hit.(string); ok {
				s.logger.Debug("rewrite cache hit", zap.String("key", key))
				return text, true, nil
			}
		}
	}

	resp, err := s.backend.Generate(ctx, domain.RewriteRequest{Model: s.model, Prompt: prompt})
	if err != nil {
		return "", false, err
	}
	return resp.Text, false, nil
}

// remember caches an accepted answer. Rejected answers are never cached so a
// later call asks the backend again.
func (s *RewriteService) remember(ctx context.Context, prompt, text string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(prompt), text, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache rewrite response", zap.Error(err))
	}
}

func (s *RewriteService) cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("rewrite:%s:%s:%s", s.backend.Name(), s.model, hex.EncodeToString(sum[:]))
}

// parseCandidate decodes a backend answer into a draft built on top of base,
// normalized to the field limits.
func (s *RewriteService) parseCandidate(text string, base *domain.ListingDraft, cfg domain.ScanConfig) (*domain.ListingDraft, error) {
	doc, err := jsonvalue.Parse([]byte(stripCodeFence(text)))
	if err != nil {
		return nil, fmt.Errorf("%w: response is not JSON: %v", domain.ErrRewriteFailed, err)
	}
	if doc.Kind() != jsonvalue.KindObject {
		return nil, fmt.Errorf("%w: response is not a JSON object", domain.ErrRewriteFailed)
	}

	candidate := *base
	candidate.Debug = nil

	title, _ := doc.Get("title")
	titleText, _ := title.Str()
	candidate.Title = TruncateChars(Clean(titleText), s.limits.TitleChars)
	if candidate.Title == "" {
		return nil, fmt.Errorf("%w: missing title", domain.ErrRewriteFailed)
	}

	bulletsValue, _ := doc.Get("bullets")
	var bullets []string
	for _, b := range bulletsValue.Items() {
		if text, ok := b.Str(); ok && Clean(text) != "" {
			bullets = append(bullets, TruncateChars(Clean(text), s.limits.BulletChars))
		}
	}
	if len(bullets) == 0 {
		return nil, fmt.Errorf("%w: missing bullets", domain.ErrRewriteFailed)
	}
	candidate.Bullets = firstN(bullets, maxBullets)

	if desc, ok := doc.Get("description"); ok {
		if text, ok := desc.Str(); ok && strings.TrimSpace(text) != "" {
			candidate.Description = TruncateChars(strings.TrimSpace(text), s.limits.DescriptionChars)
		}
	}

	var keywords []string
	if kw, ok := doc.Get("backend_keywords"); ok {
		for _, item := range kw.Items() {
			if text, ok := item.Str(); ok {
				keywords = append(keywords, text)
			}
		}
	} else if terms, ok := doc.Get("backend_search_terms"); ok {
		text, _ := terms.Str()
		keywords = strings.Fields(text)
	}
	if len(keywords) > 0 {
		safe, _ := s.scanner.FilterKeywords(DedupeKeepOrder(keywords), cfg.AllowGradeTermsFromProductName)
		candidate.BackendSearchTerms = TruncateUTF8BytesSpaceSeparated(strings.Join(safe, " "), s.limits.BackendTermsBytes)
	}

	if md, ok := doc.Get("a_plus_markdown"); ok {
		if text, ok := md.Str(); ok && strings.TrimSpace(text) != "" {
			candidate.APlusMarkdown = strings.TrimSpace(text)
		}
	}
	if aPlus, ok := doc.Get("a_plus"); ok && aPlus.Kind() == jsonvalue.KindObject {
		raw, err := aPlus.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRewriteFailed, err)
		}
		var content domain.APlusContent
		if err := json.Unmarshal(raw, &content); err != nil {
			return nil, fmt.Errorf("%w: malformed a_plus: %v", domain.ErrRewriteFailed, err)
		}
		candidate.APlus = content
	}

	return &candidate, nil
}

func (s *RewriteService) stamp(draft *domain.ListingDraft, usedFallback bool, attempts int) {
	draft.Metadata.RewriteProvider = s.backend.Name()
	draft.Metadata.RewriteModel = s.model
	draft.Metadata.RewriteUsedFallback = &usedFallback
	draft.Metadata.RewriteAttempts = attempts
}

// stripCodeFence removes a surrounding ``` or ```json fence some models add
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
