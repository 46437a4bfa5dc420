package domain

import (
	"fmt"
	"strconv"
)

// Facts is the single source-of-truth record listing copy is derived from.
// It is decoded from JSON or YAML and treated as read-only; every lookup
// degrades to an empty value when a path is absent or has the wrong type.
type Facts map[string]any

// Lookup walks nested objects along path and returns the value found, or nil.
func (f Facts) Lookup(path ...string) any {
	var cur any = map[string]any(f)
	for _, key := range path {
		obj, ok := asObject(cur)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

// Text returns the string at path, or "" when absent or not a string.
func (f Facts) Text(path ...string) string {
	s, _ := f.Lookup(path...).(string)
	return s
}

// Texts returns the string items of the list at path. Non-string items are skipped.
func (f Facts) Texts(path ...string) []string {
	list, ok := f.Lookup(path...).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Object returns the nested object at path, or nil.
func (f Facts) Object(path ...string) map[string]any {
	obj, _ := asObject(f.Lookup(path...))
	return obj
}

// Scalar renders a string or number at path as text; anything else is "".
// Used where upstream adapters emit numbers for fields like purity.
func (f Facts) Scalar(path ...string) string {
	switch v := f.Lookup(path...).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case Facts:
		return map[string]any(obj), true
	default:
		return nil, false
	}
}

// FactsFromAny converts a decoded JSON/YAML document into a Facts record.
// It fails only when the document root is not an object.
func FactsFromAny(v any) (Facts, error) {
	switch doc := v.(type) {
	case map[string]any:
		return Facts(doc), nil
	case Facts:
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: facts record must be an object, got %T", ErrInvalidRequest, v)
	}
}

// Issue severities reported by facts validation
const (
	IssueError = "error"
	IssueWarn  = "warn"
)

// FactsIssue is one problem found while validating a facts record
type FactsIssue struct {
	Severity string `json:"severity"` // "error" or "warn"
	Path     string `json:"path"`
	Message  string `json:"message"`
}

// BlockingIssues returns the issues with error severity
func BlockingIssues(issues []FactsIssue) []FactsIssue {
	var out []FactsIssue
	for _, issue := range issues {
		if issue.Severity == IssueError {
			out = append(out, issue)
		}
	}
	return out
}
