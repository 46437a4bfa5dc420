package domain

// GenerateOptions controls a single listing generation call
type GenerateOptions struct {
	Size            string `json:"size,omitempty"`
	HTMLDescription bool   `json:"html_description"`
	IncludeDebug    bool   `json:"include_debug"`
}

// APlusModule is one block of the structured A+ content draft.
// Only the fields relevant to the module type are set.
type APlusModule struct {
	Type        string   `json:"type"`
	Headline    string   `json:"headline,omitempty"`
	Subheadline string   `json:"subheadline,omitempty"`
	Items       []string `json:"items,omitempty"`
	Note        string   `json:"note,omitempty"`
}

// APlusContent is the structured A+ module list
type APlusContent struct {
	Version int           `json:"version"`
	Modules []APlusModule `json:"modules"`
}

// ListingMetadata records how a listing was produced
type ListingMetadata struct {
	SKU                 string `json:"sku"`
	ASIN                string `json:"asin,omitempty"`
	ProductName         string `json:"product_name"`
	Size                string `json:"size"`
	Generator           string `json:"generator"`
	RewriteProvider     string `json:"rewrite_provider,omitempty"`
	RewriteModel        string `json:"rewrite_model,omitempty"`
	RewriteUsedFallback *bool  `json:"rewrite_used_fallback,omitempty"`
	RewriteAttempts     int    `json:"rewrite_attempts,omitempty"`
}

// ListingDebug is attached only when debug output is requested
type ListingDebug struct {
	FactsIssues []FactsIssue `json:"facts_issues"`
	Facts       Facts        `json:"facts"`
}

// ListingDraft is the generated listing. Findings and status are attached last.
type ListingDraft struct {
	Title              string          `json:"title"`
	Bullets            []string        `json:"bullets"`
	Description        string          `json:"description"`
	BackendSearchTerms string          `json:"backend_search_terms"`
	APlusMarkdown      string          `json:"a_plus_markdown"`
	APlus              APlusContent    `json:"a_plus"`
	Metadata           ListingMetadata `json:"metadata"`
	ComplianceFindings []Finding       `json:"compliance_findings"`
	ComplianceStatus   string          `json:"compliance_status"`
	Debug              *ListingDebug   `json:"debug,omitempty"`
}
