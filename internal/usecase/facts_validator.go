package usecase

import (
	"fmt"
	"strings"

	"github.com/cruz1171975/amazonenrichment/internal/compliance"
	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

// ValidateFacts reports problems in a decoded facts document. Missing sku,
// product_name or brand, or a non-object root, are errors; everything else
// is a warning that does not block generation.
func ValidateFacts(doc any) []domain.FactsIssue {
	f, err := domain.FactsFromAny(doc)
	if err != nil {
		return []domain.FactsIssue{issue(domain.IssueError, "$", "Facts record must be a JSON object")}
	}

	var issues []domain.FactsIssue

	if Clean(f.Text("sku")) == "" {
		issues = append(issues, issue(domain.IssueError, "sku", "Required"))
	}
	productName := Clean(f.Text("product_name"))
	if productName == "" {
		issues = append(issues, issue(domain.IssueError, "product_name", "Required (storefront title)"))
	}
	if Clean(f.Text("brand")) == "" {
		issues = append(issues, issue(domain.IssueError, "brand", "Required"))
	}

	issues = append(issues, gradeIssues(f, productName)...)

	if Clean(f.Scalar("chemical_identity", "cas_number")) == "" {
		issues = append(issues, issue(domain.IssueWarn, "chemical_identity.cas_number", "Recommended"))
	}
	if len(DedupeKeepOrder(f.Texts("applications"))) == 0 {
		issues = append(issues, issue(domain.IssueWarn, "applications", "Recommended (helps generate bullets/keywords)"))
	}
	if f.Object("safety_summary") == nil {
		issues = append(issues, issue(domain.IssueWarn, "safety_summary", "Recommended"))
	} else if Clean(f.Text("safety_summary", "signal_word")) == "" {
		issues = append(issues, issue(domain.IssueWarn, "safety_summary.signal_word", "Recommended"))
	}

	return issues
}

// gradeIssues checks specifications.grade against product_name. A grade the
// name does not license is dropped from generated copy, so it only warns.
func gradeIssues(f domain.Facts, productName string) []domain.FactsIssue {
	raw := f.Lookup("specifications", "grade")
	if raw == nil {
		return nil
	}
	grade, ok := raw.(string)
	if !ok {
		return []domain.FactsIssue{issue(domain.IssueWarn, "specifications.grade", "Must be a string or null; ignored")}
	}
	grade = Clean(grade)
	if grade == "" {
		return nil
	}

	if !containsFold(productName, grade) {
		return []domain.FactsIssue{issue(domain.IssueWarn, "specifications.grade",
			"Grade may only be used if it appears in product_name; it will be omitted")}
	}

	allowed := compliance.AllowedGradeTerms(productName)
	if len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(a, grade) {
			return nil
		}
	}
	return []domain.FactsIssue{issue(domain.IssueWarn, "specifications.grade",
		fmt.Sprintf("Grade does not match a known grade term; allowed based on product_name: [%s]", strings.Join(allowed, ", ")))}
}

func issue(severity, path, message string) domain.FactsIssue {
	return domain.FactsIssue{Severity: severity, Path: path, Message: message}
}

// FactsTemplate returns an empty facts record skeleton listing every known path
func FactsTemplate() map[string]any {
	return map[string]any{
		"sku":          "SKU-12345",
		"asin":         nil,
		"product_name": "Official Storefront Product Title",
		"brand":        defaultBrandName,
		"chemical_identity": map[string]any{
			"chemical_name": nil,
			"iupac_name":    nil,
			"cas_number":    nil,
			"other_names":   []any{},
		},
		"specifications": map[string]any{
			"purity":           nil,
			"concentration":    nil,
			"grade":            nil,
			"appearance":       nil,
			"odor":             nil,
			"ph":               nil,
			"specific_gravity": nil,
			"boiling_point":    nil,
			"flash_point":      nil,
			"solubility":       nil,
		},
		"product_details": map[string]any{
			"formula":          nil,
			"molecular_weight": nil,
			"melting_point":    nil,
		},
		"packaging": map[string]any{
			"container_type":  nil,
			"sizes_available": []any{},
			"dimensions":      nil,
			"units_per_case":  nil,
			"shipping_weight": nil,
		},
		"applications":           []any{},
		"certifications":         []any{},
		"compatible_materials":   []any{},
		"incompatible_materials": []any{},
		"storage": map[string]any{
			"temperature":          nil,
			"conditions":           nil,
			"shelf_life":           nil,
			"special_requirements": nil,
		},
		"safety_summary": map[string]any{
			"signal_word":     nil,
			"primary_hazards": []any{},
			"ppe_required":    []any{},
		},
		"approved_marketing_claims": []any{},
		"keywords": map[string]any{
			"primary":     []any{},
			"secondary":   []any{},
			"application": []any{},
			"long_tail":   []any{},
		},
		"sds_link":     nil,
		"tds_link":     nil,
		"last_updated": nil,
		"updated_by":   nil,
	}
}
