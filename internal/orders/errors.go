package orders

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// The store reports failures through these kinds; the HTTP layer matches on
// them to pick a status code.
var (
	// ErrNotFound: the id is well-formed but no record matches.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidID: the id is not a valid order identifier shape.
	ErrInvalidID = errors.New("invalid order id")

	// ErrStoreUnavailable: the underlying storage could not be reached in
	// time. Wrapped around the cause; retryable by the caller.
	ErrStoreUnavailable = errors.New("order store unavailable")
)

// ValidationError reports field-level schema violations on create or update.
type ValidationError struct {
	// Fields maps a field path (JSON naming, e.g. "items[0].quantity")
	// to a human-readable reason.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "order validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, fmt.Sprintf("%s %s", f, e.Fields[f]))
	}
	return "order validation failed: " + strings.Join(parts, "; ")
}
