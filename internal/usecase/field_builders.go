package usecase

import (
	"html"
	"strings"

	"github.com/cruz1171975/amazonenrichment/internal/compliance"
	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

const (
	bulletSeparator = " • "
	maxBullets      = 5

	defaultTitleChars        = 200
	defaultBulletChars       = 250
	defaultDescriptionChars  = 2000
	defaultBackendTermsBytes = 249
	defaultBrandName         = "Alliance Chemical"
)

// ListingLimits are the per-field size limits of the target marketplace
type ListingLimits struct {
	TitleChars        int
	BulletChars       int
	DescriptionChars  int
	BackendTermsBytes int
}

// DefaultListingLimits returns the marketplace defaults
func DefaultListingLimits() ListingLimits {
	return ListingLimits{
		TitleChars:        defaultTitleChars,
		BulletChars:       defaultBulletChars,
		DescriptionChars:  defaultDescriptionChars,
		BackendTermsBytes: defaultBackendTermsBytes,
	}
}

func (l ListingLimits) withDefaults() ListingLimits {
	d := DefaultListingLimits()
	if l.TitleChars <= 0 {
		l.TitleChars = d.TitleChars
	}
	if l.BulletChars <= 0 {
		l.BulletChars = d.BulletChars
	}
	if l.DescriptionChars <= 0 {
		l.DescriptionChars = d.DescriptionChars
	}
	if l.BackendTermsBytes <= 0 {
		l.BackendTermsBytes = d.BackendTermsBytes
	}
	return l
}

// FieldBuilder derives listing copy from a facts record. Every builder is a
// pure function of its inputs and degrades to empty output on missing data.
type FieldBuilder struct {
	limits       ListingLimits
	defaultBrand string
	scanner      *compliance.Scanner
}

// NewFieldBuilder creates a field builder. Zero limits fall back to the defaults.
func NewFieldBuilder(scanner *compliance.Scanner, limits ListingLimits, defaultBrand string) *FieldBuilder {
	if scanner == nil {
		scanner = compliance.DefaultScanner()
	}
	if defaultBrand == "" {
		defaultBrand = defaultBrandName
	}
	return &FieldBuilder{
		limits:       limits.withDefaults(),
		defaultBrand: defaultBrand,
		scanner:      scanner,
	}
}

// Limits returns the limits in effect
func (b *FieldBuilder) Limits() ListingLimits {
	return b.limits
}

// PickSize resolves the size to advertise. A preferred size is matched
// case-insensitively against packaging.sizes_available and used as given
// when it is not listed; without one the first available size wins.
func PickSize(f domain.Facts, preferred string) string {
	sizes := DedupeKeepOrder(f.Texts("packaging", "sizes_available"))
	if pref := Clean(preferred); pref != "" {
		for _, s := range sizes {
			if strings.EqualFold(s, pref) {
				return s
			}
		}
		return pref
	}
	if len(sizes) > 0 {
		return sizes[0]
	}
	return ""
}

// SafeGrade returns specifications.grade only when product_name contains it
func SafeGrade(f domain.Facts) string {
	grade := Clean(f.Text("specifications", "grade"))
	if containsFold(Clean(f.Text("product_name")), grade) {
		return grade
	}
	return ""
}

func (b *FieldBuilder) brand(f domain.Facts) string {
	if brand := Clean(f.Text("brand")); brand != "" {
		return brand
	}
	return b.defaultBrand
}

// strength is the purity, or the concentration when no purity is given
func strength(f domain.Facts) string {
	if purity := Clean(f.Scalar("specifications", "purity")); purity != "" {
		return purity
	}
	return Clean(f.Scalar("specifications", "concentration"))
}

// Title joins brand, name, spec bits not already in the name, and size
func (b *FieldBuilder) Title(f domain.Facts, size string) string {
	productName := Clean(f.Text("product_name"))
	chemicalName := Clean(f.Text("chemical_identity", "chemical_name"))

	var specBits []string
	for _, bit := range []string{strength(f), SafeGrade(f)} {
		if bit == "" || containsFold(productName, bit) || containsFold(chemicalName, bit) {
			continue
		}
		specBits = append(specBits, bit)
	}

	baseName := productName
	if baseName == "" {
		baseName = chemicalName
	}

	title := JoinNonEmpty(" ", b.brand(f), baseName, strings.Join(specBits, " "), size)
	return TruncateChars(title, b.limits.TitleChars)
}

// Bullets builds up to five bullets: identity, applications, approved claims,
// packaging, safety. Missing groups are back-filled with brand and SKU.
func (b *FieldBuilder) Bullets(f domain.Facts, size string) []string {
	applications := DedupeKeepOrder(f.Texts("applications"))
	marketing := DedupeKeepOrder(f.Texts("approved_marketing_claims"))
	hazards := DedupeKeepOrder(f.Texts("safety_summary", "primary_hazards"))
	ppe := DedupeKeepOrder(f.Texts("safety_summary", "ppe_required"))

	identity := JoinNonEmpty(bulletSeparator,
		Clean(f.Text("chemical_identity", "chemical_name")),
		strength(f),
		FormatCAS(f.Scalar("chemical_identity", "cas_number")),
		labeled("Appearance", Clean(f.Text("specifications", "appearance"))),
	)

	var uses, features string
	if len(applications) > 0 {
		uses = "Applications: " + strings.Join(firstN(applications, 6), "; ")
	}
	if len(marketing) > 0 {
		features = "Features: " + strings.Join(firstN(marketing, 4), "; ")
	}

	packaging := JoinNonEmpty(bulletSeparator,
		labeled("Size", size),
		labeled("Container", Clean(f.Text("packaging", "container_type"))),
		labeled("Dimensions", Clean(f.Scalar("packaging", "dimensions"))),
	)

	var sds string
	if Clean(f.Text("sds_link")) != "" {
		sds = "SDS available"
	}
	safety := JoinNonEmpty(bulletSeparator,
		labeled("Safety", Clean(f.Text("safety_summary", "signal_word"))),
		labeled("Hazards", strings.Join(firstN(hazards, 4), "; ")),
		labeled("PPE", strings.Join(firstN(ppe, 4), "; ")),
		sds,
	)

	var bullets []string
	for _, bullet := range []string{identity, uses, features, packaging, safety} {
		if bullet != "" {
			bullets = append(bullets, bullet)
		}
	}

	for _, fill := range []struct{ label, value string }{
		{"Brand", b.brand(f)},
		{"SKU", Clean(f.Text("sku"))},
	} {
		if len(bullets) >= maxBullets {
			break
		}
		if fill.value == "" || containsFold(strings.Join(bullets, "\n"), fill.value) {
			continue
		}
		bullets = append(bullets, fill.label+": "+fill.value)
	}

	bullets = firstN(bullets, maxBullets)
	out := make([]string, len(bullets))
	for i, bullet := range bullets {
		out[i] = TruncateChars(bullet, b.limits.BulletChars)
	}
	return out
}

// descriptionSpecs are the facts paths listed under the specifications paragraph
var descriptionSpecs = []struct {
	label string
	path  []string
}{
	{"Formula", []string{"product_details", "formula"}},
	{"Molecular Weight", []string{"product_details", "molecular_weight"}},
	{"Appearance", []string{"specifications", "appearance"}},
	{"Flash Point", []string{"specifications", "flash_point"}},
	{"Boiling Point", []string{"specifications", "boiling_point"}},
	{"Melting Point", []string{"product_details", "melting_point"}},
	{"Specific Gravity", []string{"specifications", "specific_gravity"}},
	{"Solubility", []string{"specifications", "solubility"}},
}

// Description composes the identity, summary, specification, applications,
// storage, SDS and safety paragraphs. The safety paragraph is always present.
func (b *FieldBuilder) Description(f domain.Facts, size string, asHTML bool) string {
	name := Clean(f.Text("product_name"))
	if name == "" {
		name = Clean(f.Text("chemical_identity", "chemical_name"))
	}
	if name == "" {
		name = "Chemical product"
	}

	summary := JoinNonEmpty(bulletSeparator,
		strength(f),
		SafeGrade(f),
		FormatCAS(f.Scalar("chemical_identity", "cas_number")),
		labeled("Size", size),
	)

	var specs []string
	for _, s := range descriptionSpecs {
		if v := Clean(f.Scalar(s.path...)); v != "" {
			specs = append(specs, s.label+": "+v)
		}
	}

	var apps string
	if applications := DedupeKeepOrder(f.Texts("applications")); len(applications) > 0 {
		apps = "Common applications include: " + strings.Join(firstN(applications, 8), ", ") + "."
	}

	var storage string
	if s := JoinNonEmpty(" ",
		Clean(f.Text("storage", "conditions")),
		Clean(f.Text("storage", "temperature")),
		Clean(f.Text("storage", "special_requirements")),
	); s != "" {
		storage = "Storage: " + s
	}

	var sds string
	if Clean(f.Text("sds_link")) != "" {
		sds = "A Safety Data Sheet (SDS) is available for this product."
	}

	safety := "Safety: Always follow the SDS and use appropriate PPE."
	if ppe := DedupeKeepOrder(f.Texts("safety_summary", "ppe_required")); len(ppe) > 0 {
		safety = "Safety: Use appropriate PPE such as " + strings.Join(firstN(ppe, 6), ", ") + ". Always follow the SDS."
	}

	var desc string
	if asHTML {
		parts := []string{"<p><b>" + html.EscapeString(name) + "</b></p>"}
		if summary != "" {
			parts = append(parts, "<p>"+html.EscapeString(summary)+"</p>")
		}
		if len(specs) > 0 {
			items := make([]string, len(specs))
			for i, s := range specs {
				items[i] = "<li>" + html.EscapeString(s) + "</li>"
			}
			parts = append(parts, "<ul>"+strings.Join(items, "")+"</ul>")
		}
		for _, p := range []string{apps, storage, sds, safety} {
			if p != "" {
				parts = append(parts, "<p>"+html.EscapeString(p)+"</p>")
			}
		}
		desc = strings.Join(parts, "\n")
	} else {
		var spec string
		if len(specs) > 0 {
			spec = "Specifications: " + strings.Join(specs, "; ") + "."
		}
		var parts []string
		for _, p := range []string{name, summary, spec, apps, storage, sds, safety} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		desc = strings.Join(parts, "\n\n")
	}

	return TruncateChars(desc, b.limits.DescriptionChars)
}

// BackendSearchTerms merges the keyword groups, drops tokens with a hard
// finding and fits the rest into the backend byte limit.
func (b *FieldBuilder) BackendSearchTerms(f domain.Facts) string {
	var tokens []string
	for _, group := range []string{"primary", "secondary", "application", "long_tail"} {
		tokens = append(tokens, f.Texts("keywords", group)...)
	}

	cfg := domain.ScanConfig{AllowGradeTermsFromProductName: Clean(f.Text("product_name"))}
	var safe []string
	for _, t := range DedupeKeepOrder(tokens) {
		if domain.HasHardFinding(b.scanner.ScanText(t, cfg, "backend_token")) {
			continue
		}
		safe = append(safe, t)
	}
	return TruncateUTF8BytesSpaceSeparated(strings.Join(safe, " "), b.limits.BackendTermsBytes)
}

func labeled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}
