package compliance

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
	"github.com/cruz1171975/amazonenrichment/internal/jsonvalue"
)

// listingTextFields are scanned as whole-field text, in this order
var listingTextFields = []string{"title", "description", "backend_search_terms", "a_plus_markdown"}

// Scanner runs the catalog and standalone rules over text.
// It holds only compiled, read-only state and is safe for concurrent use.
type Scanner struct {
	catalog  *Catalog
	matchers []termMatcher
	graders  []gradeMatcher
}

// NewScanner compiles every catalog term once
func NewScanner(catalog *Catalog) *Scanner {
	terms := catalog.Terms()
	matchers := make([]termMatcher, len(terms))
	for i, t := range terms {
		matchers[i] = termMatcher{term: t, pattern: CompileTerm(t.Term)}
	}
	return &Scanner{
		catalog:  catalog,
		matchers: matchers,
		graders:  compileGradeMatchers(),
	}
}

var defaultScanner = sync.OnceValue(func() *Scanner {
	return NewScanner(DefaultCatalog())
})

// DefaultScanner returns the process-wide scanner over the built-in catalog
func DefaultScanner() *Scanner {
	return defaultScanner()
}

// Catalog returns the catalog the scanner was built from
func (s *Scanner) Catalog() *Catalog {
	return s.catalog
}

// ScanText scans a single field. Findings are ordered: catalog matches in
// declaration order (first match per term), percent/organism, medical claim,
// then at most one grade finding.
func (s *Scanner) ScanText(text string, cfg domain.ScanConfig, field string) []domain.Finding {
	if text == "" {
		return nil
	}

	var findings []domain.Finding
	for _, m := range s.matchers {
		if f, ok := m.match(text, field); ok {
			findings = append(findings, f)
		}
	}
	if f, ok := matchPercentOrganism(text, field); ok {
		findings = append(findings, f)
	}
	if f, ok := matchMedicalClaim(text, field); ok {
		findings = append(findings, f)
	}
	if f, ok := matchGrade(s.graders, text, cfg, field); ok {
		findings = append(findings, f)
	}
	return findings
}

// ScanListingFields scans a structured listing payload: the whole-text fields,
// each bullet as bullet_<n>, then every string under a_plus. A payload that is
// not an object is stringified and scanned as a single "payload" field.
// Missing or non-string fields are skipped.
func (s *Scanner) ScanListingFields(payload jsonvalue.Value, cfg domain.ScanConfig) []domain.Finding {
	if payload.Kind() != jsonvalue.KindObject {
		return s.ScanText(payload.String(), cfg, "payload")
	}

	var findings []domain.Finding
	for _, key := range listingTextFields {
		v, _ := payload.Get(key)
		if text, ok := v.Str(); ok {
			findings = append(findings, s.ScanText(text, cfg, key)...)
		}
	}

	if bullets, ok := payload.Get("bullets"); ok {
		for i, b := range bullets.Items() {
			if text, ok := b.Str(); ok {
				findings = append(findings, s.ScanText(text, cfg, fmt.Sprintf("bullet_%d", i+1))...)
			}
		}
	}

	if aPlus, ok := payload.Get("a_plus"); ok {
		if k := aPlus.Kind(); k == jsonvalue.KindObject || k == jsonvalue.KindArray {
			jsonvalue.Visit("a_plus", aPlus, func(path, text string) {
				findings = append(findings, s.ScanText(text, cfg, path)...)
			})
		}
	}

	return findings
}

// ScanListing scans a generated listing draft field by field
func (s *Scanner) ScanListing(listing *domain.ListingDraft, cfg domain.ScanConfig) []domain.Finding {
	if listing == nil {
		return nil
	}
	return s.ScanListingFields(ListingPayload(listing), cfg)
}

// ForbiddenTerms lists the distinct catalog terms, hard terms first
func (s *Scanner) ForbiddenTerms() []string {
	terms := s.catalog.TermsFor(domain.SeverityHard)
	return append(terms, s.catalog.TermsFor(domain.SeveritySoft)...)
}

// ListingPayload converts a listing draft into the JSON shape the scanner walks
func ListingPayload(listing *domain.ListingDraft) jsonvalue.Value {
	return jsonvalue.Object(
		jsonvalue.M("title", jsonvalue.String(listing.Title)),
		jsonvalue.M("bullets", jsonvalue.Strings(listing.Bullets)),
		jsonvalue.M("description", jsonvalue.String(listing.Description)),
		jsonvalue.M("backend_search_terms", jsonvalue.String(listing.BackendSearchTerms)),
		jsonvalue.M("a_plus_markdown", jsonvalue.String(listing.APlusMarkdown)),
		jsonvalue.M("a_plus", APlusValue(listing.APlus)),
	)
}

// APlusValue converts structured A+ content, keeping module field order
func APlusValue(content domain.APlusContent) jsonvalue.Value {
	modules := make([]jsonvalue.Value, 0, len(content.Modules))
	for _, m := range content.Modules {
		members := []jsonvalue.Member{jsonvalue.M("type", jsonvalue.String(m.Type))}
		if m.Headline != "" {
			members = append(members, jsonvalue.M("headline", jsonvalue.String(m.Headline)))
		}
		if m.Subheadline != "" {
			members = append(members, jsonvalue.M("subheadline", jsonvalue.String(m.Subheadline)))
		}
		if m.Items != nil {
			members = append(members, jsonvalue.M("items", jsonvalue.Strings(m.Items)))
		}
		if m.Note != "" {
			members = append(members, jsonvalue.M("note", jsonvalue.String(m.Note)))
		}
		modules = append(modules, jsonvalue.Object(members...))
	}
	return jsonvalue.Object(
		jsonvalue.M("version", jsonvalue.Int(content.Version)),
		jsonvalue.M("modules", jsonvalue.Array(modules...)),
	)
}

// normalizeSpace collapses whitespace runs and trims
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
