package domain

// Severity is the weight of a compliance finding
type Severity string

const (
	// SeverityHard blocks a listing from passing or being exported
	SeverityHard Severity = "hard"
	// SeveritySoft is advisory only
	SeveritySoft Severity = "soft"
)

// Compliance status values attached to a generated listing
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// BlockedTerm is one entry of the term catalog. Identity is (RuleID, Term).
type BlockedTerm struct {
	RuleID   string   `json:"rule_id" yaml:"rule_id"`
	Severity Severity `json:"severity" yaml:"severity"`
	Category string   `json:"category" yaml:"category"`
	Term     string   `json:"term" yaml:"term"`
}

// ScanConfig governs the grade-term rule of a scan.
// An empty AllowGradeTermsFromProductName means no product name was supplied.
type ScanConfig struct {
	AllowGradeTermsFromProductName string `json:"allow_grade_terms_from_product_name,omitempty"`
}

// Finding is a single compliance issue found in one field
type Finding struct {
	Severity Severity `json:"severity"`
	RuleID   string   `json:"rule_id"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Match    string   `json:"match"` // literal substring as found in the source text
}

// HasHardFinding reports whether any finding blocks the listing
func HasHardFinding(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityHard {
			return true
		}
	}
	return false
}

// StatusFor returns the compliance status for a set of findings
func StatusFor(findings []Finding) string {
	if HasHardFinding(findings) {
		return StatusFail
	}
	return StatusPass
}
