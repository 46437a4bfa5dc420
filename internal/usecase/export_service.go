package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/cruz1171975/amazonenrichment/internal/compliance"
	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

// Output formats accepted by WriteFlatFile
const (
	FormatTSV = "tsv"
	FormatCSV = "csv"
)

// ExportConfig holds marketplace settings for flat-file and PATCH exports
type ExportConfig struct {
	MarketplaceID              string
	LanguageTag                string
	ProductType                string
	RecordAction               string
	GenericKeywordFields       int
	GenericKeywordMaxBytesEach int
	DefaultBrand               string
}

func (c ExportConfig) withDefaults() ExportConfig {
	if c.MarketplaceID == "" {
		c.MarketplaceID = "ATVPDKIKX0DER"
	}
	if c.LanguageTag == "" {
		c.LanguageTag = "en_US"
	}
	if c.ProductType == "" {
		c.ProductType = "LAB_CHEMICAL"
	}
	if c.RecordAction == "" {
		c.RecordAction = "full_update"
	}
	if c.GenericKeywordFields <= 0 {
		c.GenericKeywordFields = 5
	}
	if c.GenericKeywordMaxBytesEach <= 0 {
		c.GenericKeywordMaxBytesEach = 50
	}
	if c.DefaultBrand == "" {
		c.DefaultBrand = defaultBrandName
	}
	return c
}

// ExportService maps generated listings onto marketplace upload formats
type ExportService struct {
	config  ExportConfig
	scanner *compliance.Scanner
}

// NewExportService creates an export service. Zero config fields take the marketplace defaults.
func NewExportService(scanner *compliance.Scanner, config ExportConfig) *ExportService {
	if scanner == nil {
		scanner = compliance.DefaultScanner()
	}
	return &ExportService{config: config.withDefaults(), scanner: scanner}
}

// Config returns the effective export configuration
func (s *ExportService) Config() ExportConfig {
	return s.config
}

// FlatFileRow fills one data row aligned to the template's column keys.
// Columns are located by prefix only; bullet and keyword columns are filled
// positionally. A listing with a hard finding is refused with
// domain.ErrComplianceRejection unless allowNoncompliant is set.
func (s *ExportService) FlatFileRow(headers []string, facts domain.Facts, listing *domain.ListingDraft, allowNoncompliant bool) ([]string, []string, error) {
	var keys []string
	for _, h := range headers {
		if h != "" {
			keys = append(keys, h)
		}
	}
	if len(keys) == 0 {
		return nil, nil, fmt.Errorf("%w: no attribute keys in template header row", domain.ErrInvalidRequest)
	}

	cfg := domain.ScanConfig{AllowGradeTermsFromProductName: Clean(facts.Text("product_name"))}
	if findings := s.scanner.ScanListing(listing, cfg); domain.HasHardFinding(findings) && !allowNoncompliant {
		return nil, nil, fmt.Errorf("%w: re-run with allow_noncompliant to export anyway", domain.ErrComplianceRejection)
	}

	row := make(map[string]string, len(keys))
	set := func(prefix, value string) {
		if k := firstWithPrefix(keys, prefix); k != "" {
			row[k] = value
		}
	}
	localized := func(attr string) string {
		return fmt.Sprintf("%s[marketplace_id=%s]", attr, s.config.MarketplaceID)
	}

	set("contribution_sku#", Clean(facts.Text("sku")))
	if slices.Contains(keys, "::record_action") {
		row["::record_action"] = s.config.RecordAction
	}
	set("product_type#", s.config.ProductType)
	set(localized("item_name"), Clean(listing.Title))

	brand := Clean(facts.Text("brand"))
	if brand == "" {
		brand = s.config.DefaultBrand
	}
	set(localized("brand"), brand)
	set(localized("product_description"), Clean(listing.Description))

	for i, k := range allWithPrefix(keys, localized("bullet_point")) {
		if i >= len(listing.Bullets) {
			break
		}
		row[k] = Clean(listing.Bullets[i])
	}

	gkKeys := firstN(allWithPrefix(keys, localized("generic_keyword")), s.config.GenericKeywordFields)
	if backend := Clean(listing.BackendSearchTerms); len(gkKeys) > 0 && backend != "" {
		for i, chunk := range ChunkTermsToN(backend, len(gkKeys), s.config.GenericKeywordMaxBytesEach) {
			row[gkKeys[i]] = chunk
		}
	}

	set(localized("size"), Clean(listing.Metadata.Size))
	set(localized("hazard_classification_safety_signal_word"), Clean(facts.Text("safety_summary", "signal_word")))

	data := make([]string, len(keys))
	for i, k := range keys {
		data[i] = row[k]
	}
	return keys, data, nil
}

// WriteFlatFile writes the header and rows as TSV or CSV
func WriteFlatFile(w io.Writer, file domain.FlatFile, format string) error {
	cw := csv.NewWriter(w)
	switch strings.ToLower(format) {
	case FormatTSV, "":
		cw.Comma = '\t'
	case FormatCSV:
	default:
		return fmt.Errorf("%w: unknown flat-file format %q", domain.ErrInvalidRequest, format)
	}

	if err := cw.Write(file.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(file.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// BuildPatch builds a listings item PATCH body replacing title, bullets,
// description and generic keywords. Empty attributes are left out and the
// keyword chunks lose their empty tail.
func (s *ExportService) BuildPatch(listing *domain.ListingDraft, productType string) domain.ListingPatch {
	values := func(items ...string) []domain.PatchValue {
		out := make([]domain.PatchValue, len(items))
		for i, v := range items {
			out[i] = domain.PatchValue{Value: v, MarketplaceID: s.config.MarketplaceID, LanguageTag: s.config.LanguageTag}
		}
		return out
	}
	replace := func(attr string, items []string) domain.PatchOperation {
		return domain.PatchOperation{Op: "replace", Path: "/attributes/" + attr, Value: values(items...)}
	}

	var bullets []string
	for _, b := range listing.Bullets {
		if c := Clean(b); c != "" {
			bullets = append(bullets, c)
		}
	}
	var keywords []string
	if backend := Clean(listing.BackendSearchTerms); backend != "" {
		keywords = TrimEmptyTail(ChunkTermsToN(backend, s.config.GenericKeywordFields, s.config.GenericKeywordMaxBytesEach))
	}

	patches := []domain.PatchOperation{}
	if title := Clean(listing.Title); title != "" {
		patches = append(patches, replace("item_name", []string{title}))
	}
	if len(bullets) > 0 {
		patches = append(patches, replace("bullet_point", bullets))
	}
	if desc := Clean(listing.Description); desc != "" {
		patches = append(patches, replace("product_description", []string{desc}))
	}
	if len(keywords) > 0 {
		patches = append(patches, replace("generic_keyword", keywords))
	}

	return domain.ListingPatch{ProductType: productType, Patches: patches}
}

func firstWithPrefix(keys []string, prefix string) string {
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			return k
		}
	}
	return ""
}

func allWithPrefix(keys []string, prefix string) []string {
	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}
