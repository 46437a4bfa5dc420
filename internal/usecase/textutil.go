package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const ellipsis = "…"

// Clean trims s and collapses internal whitespace runs to single spaces
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanAny is Clean for loosely typed values; anything but a string yields ""
func CleanAny(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return Clean(s)
}

// TruncateChars returns s unchanged when it has at most limit characters.
// Otherwise it keeps the first limit-1 characters, strips trailing
// whitespace and appends a single ellipsis, so the result never exceeds limit.
func TruncateChars(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:limit-1]), unicode.IsSpace) + ellipsis
}

// TruncateUTF8BytesSpaceSeparated greedily keeps whole whitespace-delimited
// tokens while the joined result stays within limit bytes. It stops at the
// first token that would overflow.
func TruncateUTF8BytesSpaceSeparated(s string, limit int) string {
	var b strings.Builder
	for _, tok := range strings.Fields(s) {
		size := len(tok)
		if b.Len() > 0 {
			size++
		}
		if b.Len()+size > limit {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}

// ChunkTermsToN splits space-separated terms into n byte-bounded segments.
// Each segment is filled greedily with whole tokens; a token that does not fit
// an empty segment stops all further filling, leaving the rest empty.
func ChunkTermsToN(terms string, n, maxBytesEach int) []string {
	tokens := strings.Fields(terms)
	chunks := make([]string, 0, n)
	i := 0
	for range n {
		var b strings.Builder
		for i < len(tokens) {
			size := len(tokens[i])
			if b.Len() > 0 {
				size++
			}
			if b.Len()+size > maxBytesEach {
				break
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(tokens[i])
			i++
		}
		chunks = append(chunks, b.String())
	}
	return chunks
}

// TrimEmptyTail drops trailing empty strings
func TrimEmptyTail(items []string) []string {
	for len(items) > 0 && items[len(items)-1] == "" {
		items = items[:len(items)-1]
	}
	return items
}

// DedupeKeepOrder cleans each item and drops empties and case-insensitive
// duplicates. The first occurrence wins and keeps its casing.
func DedupeKeepOrder(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := Clean(item)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// JoinNonEmpty cleans parts and joins the non-empty ones with sep
func JoinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := Clean(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, sep)
}

// FormatCAS renders a CAS registry number for display, or "" when absent
func FormatCAS(cas string) string {
	cas = Clean(cas)
	if cas == "" {
		return ""
	}
	return "CAS " + cas
}

// containsFold reports whether needle occurs in haystack ignoring case.
// Empty arguments never match.
func containsFold(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
