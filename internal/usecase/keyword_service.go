package usecase

import (
	"github.com/cruz1171975/amazonenrichment/internal/compliance"
	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

// KeywordGroups are the keyword lists of a facts record, in merge order
type KeywordGroups struct {
	Primary     []string `json:"primary"`
	Secondary   []string `json:"secondary"`
	Application []string `json:"application"`
	LongTail    []string `json:"long_tail"`
}

// Flat concatenates the groups in merge order
func (k KeywordGroups) Flat() []string {
	out := make([]string, 0, len(k.Primary)+len(k.Secondary)+len(k.Application)+len(k.LongTail))
	out = append(out, k.Primary...)
	out = append(out, k.Secondary...)
	out = append(out, k.Application...)
	return append(out, k.LongTail...)
}

// KeywordSuggestion is a set of suggested keywords split by compliance
type KeywordSuggestion struct {
	Suggested   KeywordGroups `json:"suggested"`
	SafeFlat    []string      `json:"safe_flat"`
	BlockedFlat []string      `json:"blocked_flat"`
}

// KeywordService suggests and filters search keywords
type KeywordService struct {
	scanner *compliance.Scanner
}

// NewKeywordService creates a keyword service
func NewKeywordService(scanner *compliance.Scanner) *KeywordService {
	if scanner == nil {
		scanner = compliance.DefaultScanner()
	}
	return &KeywordService{scanner: scanner}
}

// Suggest derives keyword groups from a facts record and filters them
// through the scanner using the record's product name as the grade licence.
func (s *KeywordService) Suggest(f domain.Facts) KeywordSuggestion {
	primary := f.Texts("keywords", "primary")
	secondary := f.Texts("keywords", "secondary")
	application := f.Texts("keywords", "application")
	longTail := f.Texts("keywords", "long_tail")

	if len(DedupeKeepOrder(primary)) == 0 {
		primary = []string{f.Text("chemical_identity", "chemical_name")}
	}
	secondary = append(secondary, f.Texts("chemical_identity", "other_names")...)
	secondary = append(secondary, f.Scalar("chemical_identity", "cas_number"), f.Text("product_name"))
	application = append(application, f.Texts("applications")...)

	groups := KeywordGroups{
		Primary:     DedupeKeepOrder(primary),
		Secondary:   DedupeKeepOrder(secondary),
		Application: DedupeKeepOrder(application),
		LongTail:    DedupeKeepOrder(longTail),
	}

	safe, blocked := s.Filter(groups.Flat(), Clean(f.Text("product_name")))
	return KeywordSuggestion{Suggested: groups, SafeFlat: safe, BlockedFlat: blocked}
}

// Filter splits terms into safe and hard-blocked lists
func (s *KeywordService) Filter(terms []string, allowGradeTermsFromProductName string) (safe, blocked []string) {
	return s.scanner.FilterKeywords(terms, allowGradeTermsFromProductName)
}
