package engine

import (
	"errors"
	"fmt"
)

// ResolutionError is the failure of a resolution pass.
//
// Every ResolutionError aborts the pass. Pattern, Placeholder and Term are
// filled in when known.
type ResolutionError struct {
	// Code identifies the error category.
	Code ResolutionErrorCode

	// Message is a human-readable description.
	Message string

	// Pattern is the triple pattern being processed.
	Pattern string

	// Placeholder is the offending token or binding placeholder.
	Placeholder string

	// Term is the search term, for search failures.
	Term string

	// Err is the underlying cause (backend errors).
	Err error
}

// ResolutionErrorCode categorizes resolution errors.
type ResolutionErrorCode string

const (
	// ErrCodeUnmappedPlaceholder indicates a pattern token with no binding.
	ErrCodeUnmappedPlaceholder ResolutionErrorCode = "UNMAPPED_PLACEHOLDER"

	// ErrCodeResolutionFailure indicates a search returned no candidates.
	ErrCodeResolutionFailure ResolutionErrorCode = "RESOLUTION_FAILURE"

	// ErrCodeBackendUnavailable indicates the search backend itself failed.
	ErrCodeBackendUnavailable ResolutionErrorCode = "BACKEND_UNAVAILABLE"

	// ErrCodeMalformedPattern indicates a pattern without exactly three tokens.
	ErrCodeMalformedPattern ResolutionErrorCode = "MALFORMED_PATTERN"
)

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Pattern != "" {
		msg += fmt.Sprintf(" (pattern=%q)", e.Pattern)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ResolutionErrorCode) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUnmappedPlaceholder reports whether err is an unmapped placeholder error.
// Uses errors.As to handle wrapped errors.
func IsUnmappedPlaceholder(err error) bool {
	return hasCode(err, ErrCodeUnmappedPlaceholder)
}

// IsResolutionFailure reports whether err is an empty-result failure.
func IsResolutionFailure(err error) bool {
	return hasCode(err, ErrCodeResolutionFailure)
}

// IsBackendUnavailable reports whether err is a search backend failure.
func IsBackendUnavailable(err error) bool {
	return hasCode(err, ErrCodeBackendUnavailable)
}

// IsMalformedPattern reports whether err is a malformed pattern error.
func IsMalformedPattern(err error) bool {
	return hasCode(err, ErrCodeMalformedPattern)
}

// NewUnmappedPlaceholderError creates a ResolutionError for a token that is
// neither structural nor in the binding list.
func NewUnmappedPlaceholderError(token string) *ResolutionError {
	return &ResolutionError{
		Code:        ErrCodeUnmappedPlaceholder,
		Message:     fmt.Sprintf("unmapped placeholder %q", token),
		Placeholder: token,
	}
}

// NewMalformedPatternError creates a ResolutionError for a pattern that does
// not split into subject, predicate and object.
func NewMalformedPatternError(pattern string, tokens int) *ResolutionError {
	return &ResolutionError{
		Code:    ErrCodeMalformedPattern,
		Message: fmt.Sprintf("expected 3 tokens, got %d", tokens),
		Pattern: pattern,
	}
}

// NewResolutionFailure creates a ResolutionError for an empty search result.
func NewResolutionFailure(placeholder, term, reason string) *ResolutionError {
	return &ResolutionError{
		Code:        ErrCodeResolutionFailure,
		Message:     fmt.Sprintf("%s for %s (term %q)", reason, placeholder, term),
		Placeholder: placeholder,
		Term:        term,
	}
}

// NewBackendUnavailableError wraps a search backend error.
func NewBackendUnavailableError(placeholder, term string, err error) *ResolutionError {
	return &ResolutionError{
		Code:        ErrCodeBackendUnavailable,
		Message:     fmt.Sprintf("search for %s (term %q) failed", placeholder, term),
		Placeholder: placeholder,
		Term:        term,
		Err:         err,
	}
}
