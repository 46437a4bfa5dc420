package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cruz1171975/amazonenrichment/internal/compliance"
	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

// rewriteRules are the standing instructions of every rewrite prompt
var rewriteRules = []string{
	"Use only facts present in the facts record or the base listing.",
	"Do not make antimicrobial, disinfecting, sanitizing, pesticide, or medical claims.",
	"Do not claim the product is safe, non-toxic, natural, or environmentally friendly.",
	"Do not use superlatives or comparisons with other products.",
	"Do not add certifications, grades, guarantees, or efficacy percentages.",
}

// rewriteBaseListing is the subset of a draft shown to the backend
type rewriteBaseListing struct {
	Title              string              `json:"title"`
	Bullets            []string            `json:"bullets"`
	Description        string              `json:"description"`
	BackendSearchTerms string              `json:"backend_search_terms"`
	APlusMarkdown      string              `json:"a_plus_markdown"`
	APlus              domain.APlusContent `json:"a_plus"`
}

// BuildRewritePrompt renders the instruction prompt for a rewrite attempt.
// feedback holds the findings that rejected the previous attempt, if any.
func BuildRewritePrompt(
	facts domain.Facts,
	base *domain.ListingDraft,
	forbiddenTerms []string,
	limits ListingLimits,
	feedback []domain.Finding,
) (string, error) {
	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return "", fmt.Errorf("failed to encode facts: %w", err)
	}
	baseJSON, err := json.Marshal(rewriteBaseListing{
		Title:              base.Title,
		Bullets:            base.Bullets,
		Description:        base.Description,
		BackendSearchTerms: base.BackendSearchTerms,
		APlusMarkdown:      base.APlusMarkdown,
		APlus:              base.APlus,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode base listing: %w", err)
	}

	allowedGrades := "(none)"
	if allowed := gradeDisplayNames(Clean(facts.Text("product_name"))); len(allowed) > 0 {
		allowedGrades = strings.Join(allowed, ", ")
	}

	var lines []string
	lines = append(lines,
		"You are writing marketplace listing copy for a chemical product.",
		"You MUST follow these rules:")
	for _, r := range rewriteRules {
		lines = append(lines, "- "+r)
	}
	lines = append(lines,
		fmt.Sprintf("- Grade allowlist for this product (derived from facts.product_name): %s. "+
			"If (none), do not output any grade wording or grade variants (e.g., lab-grade, reagent-grade, ACS, USP, food grade).", allowedGrades),
		"",
		"Forbidden terms/phrases (do not output any of these, even indirectly):")
	for _, t := range forbiddenTerms {
		lines = append(lines, "- "+t)
	}

	if len(feedback) > 0 {
		lines = append(lines, "", "Your previous answer was rejected for these findings; remove them:")
		for _, f := range feedback {
			lines = append(lines, fmt.Sprintf("- [%s] %s: %q (%s)", f.RuleID, f.Field, f.Match, f.Message))
		}
	}

	lines = append(lines,
		"",
		"Maintain a professional, technical tone. No hype.",
		"",
		"Return JSON ONLY (no markdown fences) with these keys:",
		fmt.Sprintf(`  "title" (<=%d chars), "bullets" (array of 1-5 strings, <=%d chars each),`, limits.TitleChars, limits.BulletChars),
		fmt.Sprintf(`  "description" (<=%d chars), "backend_keywords" (array of short phrases, 2-3 words max each),`, limits.DescriptionChars),
		`  "a_plus_markdown" (optional), "a_plus" (optional object).`,
		"",
		"FACTS RECORD JSON:",
		string(factsJSON),
		"",
		"BASE LISTING JSON (safe starting point):",
		string(baseJSON),
		"",
		"Now rewrite for clarity and search relevance while staying compliant and within limits.",
		"Return JSON only.",
	)

	return strings.Join(lines, "\n"), nil
}

// gradeDisplayNames returns the known grade terms licensed by productName,
// in their display casing
func gradeDisplayNames(productName string) []string {
	var out []string
	for _, g := range compliance.GradeTerms() {
		if containsFold(productName, g) {
			out = append(out, g)
		}
	}
	return out
}
