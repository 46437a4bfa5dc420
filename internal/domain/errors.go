package domain

import (
	"errors"
	"strings"
)

var (
	// ErrValidation is returned when a facts record is missing a required field
	ErrValidation = errors.New("facts record failed validation")

	// ErrComplianceRejection is returned when an export is refused because of hard findings
	ErrComplianceRejection = errors.New("listing failed compliance scan")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnknownProvider is returned when no rewrite backend is registered under a name
	ErrUnknownProvider = errors.New("unknown rewrite provider")

	// ErrRewriteAPIFailure is returned when the rewrite backend request fails
	ErrRewriteAPIFailure = errors.New("rewrite API request failed")

	// ErrRewriteFailed marks a rewrite attempt whose candidate could not be used.
	// It never escapes the rewrite runner; the deterministic listing is kept instead.
	ErrRewriteFailed = errors.New("rewrite candidate rejected")
)

// ValidationError carries the blocking issues found in a facts record.
type ValidationError struct {
	Issues []FactsIssue
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("facts record failed validation:")
	for _, issue := range e.Issues {
		b.WriteString("\n")
		b.WriteString(issue.Path)
		b.WriteString(": ")
		b.WriteString(issue.Message)
	}
	return b.String()
}

// Is lets errors.Is(err, ErrValidation) match a *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
