package compliance

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogDocument struct {
	Version string         `yaml:"version"`
	Groups  []catalogGroup `yaml:"groups"`
}

type catalogGroup struct {
	ID       string          `yaml:"id"`
	Severity domain.Severity `yaml:"severity"`
	Category string          `yaml:"category"`
	Terms    []string        `yaml:"terms"`
}

// Catalog is an immutable, ordered table of blocked terms
type Catalog struct {
	version string
	terms   []domain.BlockedTerm
}

// ParseCatalog builds a catalog from its YAML document.
// Declaration order of groups and terms is kept; it drives finding order.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse term catalog: %w", err)
	}

	var terms []domain.BlockedTerm
	for _, g := range doc.Groups {
		if g.ID == "" {
			return nil, fmt.Errorf("term catalog group without id (category %q)", g.Category)
		}
		if g.Severity != domain.SeverityHard && g.Severity != domain.SeveritySoft {
			return nil, fmt.Errorf("term catalog group %s: severity must be hard or soft, got %q", g.ID, g.Severity)
		}
		for _, term := range g.Terms {
			terms = append(terms, domain.BlockedTerm{
				RuleID:   g.ID,
				Severity: g.Severity,
				Category: g.Category,
				Term:     term,
			})
		}
	}

	return &Catalog{version: doc.Version, terms: terms}, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := ParseCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// DefaultCatalog returns the built-in catalog, parsed once per process
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

// Version identifies the catalog revision
func (c *Catalog) Version() string {
	return c.version
}

// Terms returns a copy of the catalog entries in declaration order
func (c *Catalog) Terms() []domain.BlockedTerm {
	out := make([]domain.BlockedTerm, len(c.terms))
	copy(out, c.terms)
	return out
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.terms)
}

// TermsFor returns the distinct terms of the given severity, lowercased, in order.
func (c *Catalog) TermsFor(severity domain.Severity) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range c.terms {
		if t.Severity != severity {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(t.Term))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
