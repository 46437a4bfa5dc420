package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	assert.Equal(t, "a b c", Clean("  a \t b\n\nc  "))
	assert.Equal(t, "", Clean("   "))
	assert.Equal(t, "x", CleanAny(" x "))
	assert.Equal(t, "", CleanAny(42))
	assert.Equal(t, "", CleanAny(nil))
}

func TestTruncateChars(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		limit int
		want  string
	}{
		{name: "short string unchanged", s: "abc", limit: 5, want: "abc"},
		{name: "exact length unchanged", s: "abcde", limit: 5, want: "abcde"},
		{name: "truncated with ellipsis", s: "abcdefgh", limit: 5, want: "abcd…"},
		{name: "trailing space stripped before ellipsis", s: "abc defgh", limit: 5, want: "abc…"},
		{name: "counts characters not bytes", s: "ééééé", limit: 5, want: "ééééé"},
		{name: "multibyte truncation", s: "éééééé", limit: 4, want: "ééé…"},
		{name: "limit one", s: "abc", limit: 1, want: "…"},
		{name: "limit zero", s: "abc", limit: 0, want: ""},
		{name: "empty", s: "", limit: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateChars(tt.s, tt.limit))
		})
	}
}

func TestTruncateChars_NeverExceedsLimit(t *testing.T) {
	inputs := []string{
		"",
		"short",
		strings.Repeat("word ", 100),
		strings.Repeat("ü", 300),
		"Alliance Chemical Isopropyl Alcohol 99% Technical Grade 1 Gallon",
	}
	for _, s := range inputs {
		for limit := 0; limit <= 70; limit++ {
			got := TruncateChars(s, limit)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), limit, "TruncateChars(%q, %d)", s, limit)
			if utf8.RuneCountInString(s) <= limit {
				assert.Equal(t, s, got)
			}
		}
	}
}

func TestTruncateUTF8BytesSpaceSeparated(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		limit int
		want  string
	}{
		{name: "fits", s: "alpha beta", limit: 20, want: "alpha beta"},
		{name: "stops at overflow", s: "alpha beta gamma", limit: 12, want: "alpha beta"},
		{name: "stops at first overflow even if later token fits", s: "alpha verylongtoken b", limit: 10, want: "alpha"},
		{name: "collapses whitespace", s: "  alpha   beta ", limit: 20, want: "alpha beta"},
		{name: "counts bytes", s: "ééé ab", limit: 6, want: "ééé"},
		{name: "first token too long", s: "toolong x", limit: 3, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateUTF8BytesSpaceSeparated(tt.s, tt.limit))
		})
	}
}

func TestTruncateUTF8BytesSpaceSeparated_WholeTokensInOrder(t *testing.T) {
	s := "isopropyl alcohol IPA isopropanol électronique cleaner 2-propanol degreaser"
	tokens := strings.Fields(s)
	for limit := 0; limit <= len(s)+1; limit++ {
		got := TruncateUTF8BytesSpaceSeparated(s, limit)
		assert.LessOrEqual(t, len(got), limit)
		if got == "" {
			continue
		}
		assert.Equal(t, tokens[:len(strings.Fields(got))], strings.Fields(got))
	}
}

func TestChunkTermsToN(t *testing.T) {
	got := ChunkTermsToN("aaa bbb ccc ddd eee", 3, 7)
	assert.Equal(t, []string{"aaa bbb", "ccc ddd", "eee"}, got)

	got = ChunkTermsToN("aaa bbb", 4, 7)
	assert.Equal(t, []string{"aaa bbb", "", "", ""}, got)
	assert.Equal(t, []string{"aaa bbb"}, TrimEmptyTail(got))

	// a token larger than a chunk blocks the rest
	got = ChunkTermsToN("aaa toolongtoken bbb", 3, 7)
	assert.Equal(t, []string{"aaa", "", ""}, got)

	assert.Equal(t, []string{}, ChunkTermsToN("aaa", 0, 7))
}

func TestDedupeKeepOrder(t *testing.T) {
	in := []string{"IPA", " ipa ", "Isopropanol", "", "  ", "isopropanol", "2-Propanol"}
	want := []string{"IPA", "Isopropanol", "2-Propanol"}

	got := DedupeKeepOrder(in)
	assert.Equal(t, want, got)
	assert.Equal(t, got, DedupeKeepOrder(got))
	assert.Empty(t, DedupeKeepOrder(nil))
}

func TestJoinNonEmptyAndFormatCAS(t *testing.T) {
	assert.Equal(t, "a • b", JoinNonEmpty(" • ", "a", "", "  ", " b "))
	assert.Equal(t, "", JoinNonEmpty(" • "))
	assert.Equal(t, "CAS 67-63-0", FormatCAS(" 67-63-0 "))
	assert.Equal(t, "", FormatCAS(""))
}
