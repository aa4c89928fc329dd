// Package apperr defines the error taxonomy shared by the service, policy
// and filter layers.  Handlers translate these values into HTTP responses:
// ErrUnauthorized → 401, ErrForbidden → 403, ErrNotFound → 404 and every
// *ValidationError → 400 with field level messages.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized = errors.New("authentication credentials were not provided")
	ErrForbidden    = errors.New("you do not have permission to perform this action")
	ErrNotFound     = errors.New("not found")

	// Causes carried by a *ValidationError.
	ErrOutOfRangeSeat     = errors.New("seat out of range")
	ErrSeatAlreadyTaken   = errors.New("seat already taken")
	ErrInvalidFilterValue = errors.New("invalid filter value")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrInvalidField       = errors.New("invalid field")
)

// Fields maps a field name to either []string (messages for that field) or
// []Fields (one entry per element of a list field, empty when the element
// is valid).
type Fields map[string]any

// ValidationError is a 400-class error with field level messages.
type ValidationError struct {
	Fields Fields
	causes []error
}

// Invalid builds a ValidationError for a single field.
func Invalid(cause error, field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(cause, field, msg)
	return v
}

// Add appends msg to field and records cause.
func (v *ValidationError) Add(cause error, field, msg string) {
	if v.Fields == nil {
		v.Fields = Fields{}
	}
	msgs, _ := v.Fields[field].([]string)
	v.Fields[field] = append(msgs, msg)
	v.addCause(cause)
}

// AddItem records the errors of the i-th element of list field.  n is the
// length of the list so that valid elements render as empty objects.
func (v *ValidationError) AddItem(field string, i, n int, item *ValidationError) {
	if v.Fields == nil {
		v.Fields = Fields{}
	}
	items, _ := v.Fields[field].([]Fields)
	if items == nil {
		items = make([]Fields, n)
		for k := range items {
			items[k] = Fields{}
		}
	}
	for k, msg := range item.Fields {
		items[i][k] = msg
	}
	v.Fields[field] = items
	for _, c := range item.causes {
		v.addCause(c)
	}
}

func (v *ValidationError) addCause(cause error) {
	if cause == nil {
		return
	}
	for _, c := range v.causes {
		if c == cause {
			return
		}
	}
	v.causes = append(v.causes, cause)
}

// Empty reports whether nothing was recorded.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// Err returns v as an error, or nil when nothing was recorded.
func (v *ValidationError) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, v.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the recorded causes to errors.Is.
func (v *ValidationError) Unwrap() []error {
	return v.causes
}
