package compliance

import "github.com/cruz1171975/amazonenrichment/internal/domain"

// FilterKeywords splits terms into those safe to use and those with a hard
// finding. Whitespace is normalized and empty terms dropped; order is kept
// within each list.
func (s *Scanner) FilterKeywords(terms []string, allowGradeTermsFromProductName string) (safe, blocked []string) {
	cfg := domain.ScanConfig{AllowGradeTermsFromProductName: allowGradeTermsFromProductName}
	safe = []string{}
	blocked = []string{}
	for _, term := range terms {
		t := normalizeSpace(term)
		if t == "" {
			continue
		}
		if domain.HasHardFinding(s.ScanText(t, cfg, "keyword")) {
			blocked = append(blocked, t)
		} else {
			safe = append(safe, t)
		}
	}
	return safe, blocked
}

// FilterKeywords runs FilterKeywords on the default scanner
func FilterKeywords(terms []string, allowGradeTermsFromProductName string) (safe, blocked []string) {
	return DefaultScanner().FilterKeywords(terms, allowGradeTermsFromProductName)
}
