package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

func TestRenderListing(t *testing.T) {
	tests := []struct {
		name    string
		listing *domain.ListingDraft
		want    string
	}{
		{
			name: "all sections",
			listing: &domain.ListingDraft{
				Title:              "Acme Acetone 1 Gallon",
				Bullets:            []string{" Acetone ", "Size: 1 Gallon"},
				Description:        "Acetone\n\nSafety: Always follow the SDS and use appropriate PPE.",
				BackendSearchTerms: "acetone solvent",
				APlusMarkdown:      "# A+ Draft: Acetone\n\n## Safety & Handling",
			},
			want: "# Title\nAcme Acetone 1 Gallon\n\n" +
				"# Bullets\n- Acetone\n- Size: 1 Gallon\n\n" +
				"# Description\nAcetone\n\nSafety: Always follow the SDS and use appropriate PPE.\n\n" +
				"# Backend Search Terms\nacetone solvent\n\n" +
				"# A+ Draft: Acetone\n\n## Safety & Handling\n",
		},
		{
			name:    "title only",
			listing: &domain.ListingDraft{Title: "Acetone"},
			want:    "# Title\nAcetone\n",
		},
		{
			name:    "empty",
			listing: &domain.ListingDraft{},
			want:    "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderListing(tt.listing)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptionText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text unchanged",
			in:   "Acetone\n\nSafety first.",
			want: "Acetone\n\nSafety first.",
		},
		{
			name: "paragraphs and list",
			in: "<p><b>Acetone &amp; Water</b></p>\n<p>99% • CAS 67-64-1</p>\n" +
				"<ul><li>Formula: C3H6O</li><li> </li><li>Appearance: Clear</li></ul>\n<p>Safety: Always follow the SDS.</p>",
			want: "Acetone & Water\n\n99% • CAS 67-64-1\n\n- Formula: C3H6O\n\n- Appearance: Clear\n\nSafety: Always follow the SDS.",
		},
		{
			name: "no paragraphs",
			in:   "<div>Acetone   <span>solvent</span></div>",
			want: "Acetone solvent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DescriptionText(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptionText_GeneratedHTML(t *testing.T) {
	b := newTestBuilder()
	f := loadFacts(t, "facts_isopropyl_alcohol.json")

	got, err := DescriptionText(b.Description(f, "1 Gallon", true))
	require.NoError(t, err)
	assert.Contains(t, got, "Isopropyl Alcohol 99% Technical Grade\n\n99% • Technical Grade")
	assert.Contains(t, got, "- Formula: C3H8O\n\n- Molecular Weight: 60.10 g/mol")
}
