package usecase

import (
	"strings"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

const (
	aPlusVersion         = 1
	aPlusMaxFeatures     = 6
	aPlusMaxApplications = 10
)

var aPlusImageSuggestions = []string{
	"Front label / hero image",
	"Specification callouts (purity/concentration/CAS if applicable)",
	"Application collage (uses without regulated efficacy claims)",
	"Safety callout (PPE / storage iconography)",
}

// APlusMarkdown drafts the A+ page as markdown
func (b *FieldBuilder) APlusMarkdown(f domain.Facts) string {
	productName := Clean(f.Text("product_name"))
	chemicalName := Clean(f.Text("chemical_identity", "chemical_name"))
	applications := DedupeKeepOrder(f.Texts("applications"))
	marketing := DedupeKeepOrder(f.Texts("approved_marketing_claims"))
	hazards := DedupeKeepOrder(f.Texts("safety_summary", "primary_hazards"))
	ppe := DedupeKeepOrder(f.Texts("safety_summary", "ppe_required"))

	headline := productName
	if headline == "" {
		headline = chemicalName
	}
	if headline == "" {
		headline = b.defaultBrand
	}

	var lines []string
	lines = append(lines, "# A+ Draft: "+headline)
	if sub := JoinNonEmpty(bulletSeparator, chemicalName, FormatCAS(f.Scalar("chemical_identity", "cas_number"))); sub != "" {
		lines = append(lines, sub)
	}
	lines = append(lines, "")

	if len(marketing) > 0 {
		lines = append(lines, "## Key Features")
		for _, m := range firstN(marketing, aPlusMaxFeatures) {
			lines = append(lines, "- "+m)
		}
		lines = append(lines, "")
	}

	if len(applications) > 0 {
		lines = append(lines,
			"## Common Applications",
			strings.Join(firstN(applications, aPlusMaxApplications), ", ")+".",
			"")
	}

	lines = append(lines, "## Safety & Handling")
	if len(hazards) > 0 {
		lines = append(lines, "Hazards: "+strings.Join(firstN(hazards, 6), "; ")+".")
	}
	if len(ppe) > 0 {
		lines = append(lines, "Use appropriate PPE such as "+strings.Join(firstN(ppe, 8), ", ")+".")
	}
	lines = append(lines, "Always follow the SDS and label directions.", "")

	lines = append(lines, "## Images Needed (Suggestions)")
	for _, s := range aPlusImageSuggestions {
		lines = append(lines, "- "+s)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// APlus builds the structured module list that mirrors the markdown draft
func (b *FieldBuilder) APlus(f domain.Facts) domain.APlusContent {
	return domain.APlusContent{
		Version: aPlusVersion,
		Modules: []domain.APlusModule{
			{
				Type:        "hero",
				Headline:    Clean(f.Text("product_name")),
				Subheadline: "Facts-based product information (draft)",
			},
			{
				Type:  "features",
				Items: firstN(DedupeKeepOrder(f.Texts("approved_marketing_claims")), aPlusMaxFeatures),
			},
			{
				Type:  "applications",
				Items: firstN(DedupeKeepOrder(f.Texts("applications")), aPlusMaxApplications),
			},
			{
				Type: "safety",
				Note: "Always follow the SDS and label directions. Use appropriate PPE.",
			},
		},
	}
}
