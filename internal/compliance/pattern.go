package compliance

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// neverMatch is used for empty terms
var neverMatch = regexp.MustCompile(`\b\B`)

// RE2's \s is ASCII only; \p{Z} adds no-break, thin and other Unicode spaces.
const (
	spaceClass     = `[\s\p{Z}]`
	separatorClass = `[-\s\p{Z}]`
)

// CompileTerm turns a literal phrase into a case-insensitive matcher.
//
// Spaces inside the phrase match one or more spaces (Unicode included) or hyphens, hyphens match
// zero or more, so "kills bacteria" also hits "kills-bacteria" and "germ-free"
// hits "germ free" or "germfree". Word boundaries are anchored only on sides
// where the phrase starts or ends with a letter or digit: "#1" matches inside
// "the #1 choice" while "best" does not match inside "bestest".
func CompileTerm(term string) *regexp.Regexp {
	t := strings.TrimSpace(term)
	if t == "" {
		return neverMatch
	}

	var b strings.Builder
	b.WriteString("(?i)")

	first, _ := utf8.DecodeRuneInString(t)
	last, _ := utf8.DecodeLastRuneInString(t)
	if isAlnum(first) {
		b.WriteString(`\b`)
	}
	for _, r := range t {
		switch {
		case unicode.IsSpace(r):
			b.WriteString(separatorClass + "+")
		case r == '-':
			b.WriteString(separatorClass + "*")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if isAlnum(last) {
		b.WriteString(`\b`)
	}

	return regexp.MustCompile(b.String())
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
