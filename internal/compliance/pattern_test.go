package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileTerm(t *testing.T) {
	tests := []struct {
		name string
		term string
		text string
		want bool
	}{
		{name: "exact phrase", term: "kills bacteria", text: "it kills bacteria fast", want: true},
		{name: "case insensitive", term: "kills bacteria", text: "KILLS Bacteria", want: true},
		{name: "space matches hyphen", term: "kills bacteria", text: "kills-bacteria", want: true},
		{name: "space matches run of spaces", term: "kills bacteria", text: "kills   bacteria", want: true},
		{name: "space matches no-break space", term: "kills bacteria", text: "kills\u00a0bacteria", want: true},
		{name: "space matches thin space", term: "kills germs", text: "kills\u2009germs", want: true},
		{name: "space matches ideographic space", term: "kills germs", text: "kills\u3000germs", want: true},
		{name: "hyphen matches no-break space", term: "non-toxic", text: "non\u00a0toxic", want: true},
		{name: "space requires a separator", term: "kills bacteria", text: "killsbacteria", want: false},
		{name: "hyphen matches space", term: "germ-free", text: "germ free", want: true},
		{name: "hyphen matches nothing", term: "germ-free", text: "germfree", want: true},
		{name: "hyphen matches spaced hyphen", term: "germ-free", text: "germ - free", want: true},
		{name: "word boundary at end", term: "best", text: "bestest", want: false},
		{name: "word boundary at start", term: "best", text: "the unbest", want: false},
		{name: "standalone word", term: "best", text: "our best yet", want: true},
		{name: "punctuation leading term", term: "#1", text: "the #1 choice", want: true},
		{name: "punctuation leading term glued to word", term: "#1", text: "rated#1", want: true},
		{name: "digit trailing boundary", term: "#1", text: "the #12 choice", want: false},
		{name: "percent term", term: "99.9% of germs", text: "Kills 99.9% of germs", want: true},
		{name: "dot is literal", term: "99.9% of germs", text: "9959% of germs", want: false},
		{name: "empty term", term: "", text: "anything", want: false},
		{name: "whitespace term", term: "   ", text: "   ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompileTerm(tt.term).MatchString(tt.text)
			assert.Equal(t, tt.want, got, "CompileTerm(%q) on %q", tt.term, tt.text)
		})
	}
}

func TestCompileTerm_EmptyNeverMatchesEmptyText(t *testing.T) {
	assert.False(t, CompileTerm("").MatchString(""))
}
