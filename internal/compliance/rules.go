package compliance

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

// Rule ids of the standalone rules
const (
	RulePercentOrganism = "PATTERN-PERCENT-ORGANISM"
	RuleMedicalClaim    = "PATTERN-MEDICAL-CLAIM"
	RuleGradeUnverified = "RULE-GRADE-UNVERIFIED"
	RuleGradeMismatch   = "RULE-GRADE-MISMATCH"

	blocklistRulePrefix = "BLOCKLIST-"
)

var (
	// A percentage followed later in the line by an organism noun, e.g. "99.9% of germs"
	percentOrganismPattern = regexp.MustCompile(
		`(?i)\b\d{1,3}(?:\.\d+)?` + spaceClass + `*%.*\b(?:germs?|bacteria|viruses?|mold|mildew|fungus|pathogens?)\b`)

	// A medical verb followed within three words by a condition, e.g. "treats minor pain"
	medicalClaimPattern = regexp.MustCompile(
		`(?i)\b(?:cures|treats|prevents|heals|healing|therapeutic|medicinal)\b` +
			`(?:\W+\w+){0,3}\W+` +
			`\b(?:disease|illness|infection|asthma|allerg(?:y|ies)|flu|cold|covid|pain|inflammation)\b`)
)

// gradeTerms are the regulated quality descriptors, in matching order
var gradeTerms = []string{
	"Laboratory Grade",
	"Technical Grade",
	"Food Grade",
	"ACS Grade",
	"Reagent Grade",
	"Pharmaceutical Grade",
	"Industrial Grade",
	"USP Grade",
	"FCC Grade",
	"NF Grade",
}

// GradeTerms returns the known grade terms in matching order
func GradeTerms() []string {
	out := make([]string, len(gradeTerms))
	copy(out, gradeTerms)
	return out
}

// AllowedGradeTerms returns the known grade terms that appear (case-insensitively)
// in productName, lowercased and sorted.
func AllowedGradeTerms(productName string) []string {
	if productName == "" {
		return nil
	}
	lower := strings.ToLower(productName)
	var allowed []string
	for _, g := range gradeTerms {
		if strings.Contains(lower, strings.ToLower(g)) {
			allowed = append(allowed, strings.ToLower(g))
		}
	}
	sort.Strings(allowed)
	return allowed
}

// termMatcher pairs a compiled catalog term with what is needed to report it
type termMatcher struct {
	term    domain.BlockedTerm
	pattern *regexp.Regexp
}

func (m termMatcher) match(text, field string) (domain.Finding, bool) {
	loc := m.pattern.FindStringIndex(text)
	if loc == nil {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Severity: m.term.Severity,
		RuleID:   blocklistRulePrefix + m.term.RuleID,
		Field:    field,
		Message:  fmt.Sprintf("Blocked term in category '%s'", m.term.Category),
		Match:    text[loc[0]:loc[1]],
	}, true
}

type gradeMatcher struct {
	key     string // lowercased grade term
	pattern *regexp.Regexp
}

func compileGradeMatchers() []gradeMatcher {
	out := make([]gradeMatcher, len(gradeTerms))
	for i, g := range gradeTerms {
		out[i] = gradeMatcher{
			key:     strings.ToLower(g),
			pattern: regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(g), " ", spaceClass+"+") + `\b`),
		}
	}
	return out
}

func matchPercentOrganism(text, field string) (domain.Finding, bool) {
	loc := percentOrganismPattern.FindStringIndex(text)
	if loc == nil {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Severity: domain.SeverityHard,
		RuleID:   RulePercentOrganism,
		Field:    field,
		Message:  "Percent/organism claim implies antimicrobial efficacy",
		Match:    text[loc[0]:loc[1]],
	}, true
}

func matchMedicalClaim(text, field string) (domain.Finding, bool) {
	loc := medicalClaimPattern.FindStringIndex(text)
	if loc == nil {
		return domain.Finding{}, false
	}
	return domain.Finding{
		Severity: domain.SeverityHard,
		RuleID:   RuleMedicalClaim,
		Field:    field,
		Message:  "Medical/drug claim language detected",
		Match:    text[loc[0]:loc[1]],
	}, true
}

// matchGrade reports at most one grade finding: the first grade term, in
// declared order, that occurs in text and is not licensed by the product name.
// With no licensed grades every grade term is unverified.
func matchGrade(graders []gradeMatcher, text string, cfg domain.ScanConfig, field string) (domain.Finding, bool) {
	allowed := AllowedGradeTerms(cfg.AllowGradeTermsFromProductName)

	if len(allowed) == 0 {
		for _, g := range graders {
			if hit := g.pattern.FindString(text); hit != "" {
				return domain.Finding{
					Severity: domain.SeverityHard,
					RuleID:   RuleGradeUnverified,
					Field:    field,
					Message:  "Grade term used but not allowed (no product_name provided or grade not present there)",
					Match:    hit,
				}, true
			}
		}
		return domain.Finding{}, false
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}
	for _, g := range graders {
		if allowedSet[g.key] {
			continue
		}
		if hit := g.pattern.FindString(text); hit != "" {
			return domain.Finding{
				Severity: domain.SeverityHard,
				RuleID:   RuleGradeMismatch,
				Field:    field,
				Message:  fmt.Sprintf("Grade term not present in product_name (allowed: %s)", quotedList(allowed)),
				Match:    hit,
			}, true
		}
	}
	return domain.Finding{}, false
}

// quotedList renders terms as ['a', 'b']
func quotedList(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = "'" + t + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
