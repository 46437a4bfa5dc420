package domain

// PatchValue is one localized attribute value of a listings PATCH operation
type PatchValue struct {
	Value         string `json:"value"`
	MarketplaceID string `json:"marketplace_id"`
	LanguageTag   string `json:"language_tag"`
}

// PatchOperation replaces one listing attribute
type PatchOperation struct {
	Op    string       `json:"op"`
	Path  string       `json:"path"`
	Value []PatchValue `json:"value"`
}

// ListingPatch is a listings item PATCH request body
type ListingPatch struct {
	ProductType string           `json:"productType,omitempty"`
	Patches     []PatchOperation `json:"patches"`
}

// FlatFile is a header row plus data rows aligned to a category template
type FlatFile struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}
