package content

import (
	"errors"
	"fmt"
)

// DefaultSlug selects the report instance when a request does not name one.
const DefaultSlug = "impact-report"

// Storage-only and server-computed keys of a section document.
const (
	FieldID        = "_id"
	FieldSlug      = "slug"
	FieldUpdatedAt = "updatedAt"
)

// Fields is a section document (or a partial update) keyed by field name.
// Values are JSON-shaped: string, bool, float64, map[string]any, []any.
type Fields map[string]any

var (
	// ErrNotFound is returned when no document exists for a (section, slug) pair.
	ErrNotFound = errors.New("section not found")
	// ErrEmptyBody is returned when a write carries no JSON object at all.
	ErrEmptyBody = errors.New("missing fields")
)

// UnknownSectionError reports a path segment that maps to no section.
type UnknownSectionError struct {
	Section string
}

func (e *UnknownSectionError) Error() string {
	return fmt.Sprintf("unknown section %q", e.Section)
}

// Clone returns a deep copy so callers can't mutate stored state.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Fields:
		return t.Clone()
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case []any:
		a := make([]any, len(t))
		for i, vv := range t {
			a[i] = cloneValue(vv)
		}
		return a
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// StripInternal drops the storage-only keys (_id and slug) from a document.
func StripInternal(doc Fields) Fields {
	out := make(Fields, len(doc))
	for k, v := range doc {
		if k == FieldID || k == FieldSlug {
			continue
		}
		out[k] = v
	}
	return out
}

func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Fields:
		return t, true
	}
	return nil, false
}
