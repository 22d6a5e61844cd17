package content

import (
	"fmt"
	"sort"
)

// Kind is the declared shape of a section field.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindNumber
	KindStringArray
	KindObject
	KindObjectArray
	KindArray
)

// zero is the value synthesized for a missing legacy field.
func (k Kind) zero() any {
	switch k {
	case KindStringArray, KindObjectArray, KindArray:
		return []any{}
	case KindBool:
		return false
	case KindNumber:
		return float64(0)
	case KindObject:
		return map[string]any{}
	}
	return ""
}

// LegacyField maps a flat top-level field to a field of a nested group.
type LegacyField struct {
	Flat   string
	Nested string
	Kind   Kind
}

// NestedGroup is a sub-object of a section. Groups without Legacy entries
// are plain nested objects and never reconciled.
type NestedGroup struct {
	Name   string
	Fields []string
	Legacy []LegacyField
	// VisibilityFlag is the flat sibling carrying the group's `visible` flag.
	VisibilityFlag string
}

func (g NestedGroup) hasLegacyIn(doc Fields) bool {
	for _, lf := range g.Legacy {
		if _, ok := doc[lf.Flat]; ok {
			return true
		}
	}
	return false
}

// SectionSchema declares the fields one section accepts and how its nested
// groups relate to legacy flat fields.
type SectionSchema struct {
	Path       string
	Collection string
	Groups     []NestedGroup

	allowed map[string]Kind
}

// NewSchema builds a schema from plain fields and nested groups. Group names,
// legacy flat names and visibility flags become allowed keys too.
func NewSchema(path, collection string, fields map[string]Kind, groups ...NestedGroup) (*SectionSchema, error) {
	if path == "" || collection == "" {
		return nil, fmt.Errorf("schema: path and collection are required")
	}
	s := &SectionSchema{Path: path, Collection: collection, Groups: groups, allowed: map[string]Kind{}}
	for k, kind := range fields {
		s.allowed[k] = kind
	}
	flat := map[string]string{}
	for _, g := range groups {
		if _, dup := s.allowed[g.Name]; dup {
			return nil, fmt.Errorf("schema %s: group %q collides with a field", path, g.Name)
		}
		s.allowed[g.Name] = KindObject
		nested := map[string]bool{}
		for _, f := range g.Fields {
			nested[f] = true
		}
		for _, lf := range g.Legacy {
			if !nested[lf.Nested] {
				return nil, fmt.Errorf("schema %s: legacy field %q targets unknown %s.%s", path, lf.Flat, g.Name, lf.Nested)
			}
			if owner, dup := flat[lf.Flat]; dup {
				return nil, fmt.Errorf("schema %s: legacy field %q mapped twice (%s, %s)", path, lf.Flat, owner, g.Name)
			}
			if _, dup := s.allowed[lf.Flat]; dup {
				return nil, fmt.Errorf("schema %s: legacy field %q collides with a field", path, lf.Flat)
			}
			flat[lf.Flat] = g.Name
			s.allowed[lf.Flat] = lf.Kind
		}
		if g.VisibilityFlag != "" {
			if _, dup := s.allowed[g.VisibilityFlag]; dup {
				return nil, fmt.Errorf("schema %s: visibility flag %q collides with a field", path, g.VisibilityFlag)
			}
			s.allowed[g.VisibilityFlag] = KindBool
		}
	}
	return s, nil
}

// Allowed reports whether key may be written to this section.
func (s *SectionSchema) Allowed(key string) bool {
	_, ok := s.allowed[key]
	return ok
}

// KindOf returns the declared kind of an allowed key.
func (s *SectionSchema) KindOf(key string) (Kind, bool) {
	k, ok := s.allowed[key]
	return k, ok
}

// AllowedKeys lists every writable key, sorted.
func (s *SectionSchema) AllowedKeys() []string {
	out := make([]string, 0, len(s.allowed))
	for k := range s.allowed {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Registry resolves external path segments to section schemas.
type Registry struct {
	byPath map[string]*SectionSchema
	order  []string
}

// NewRegistry indexes schemas by path; paths and collections must be unique.
func NewRegistry(schemas ...*SectionSchema) (*Registry, error) {
	r := &Registry{byPath: map[string]*SectionSchema{}}
	cols := map[string]string{}
	for _, s := range schemas {
		if _, dup := r.byPath[s.Path]; dup {
			return nil, fmt.Errorf("registry: duplicate section %q", s.Path)
		}
		if other, dup := cols[s.Collection]; dup {
			return nil, fmt.Errorf("registry: sections %q and %q share collection %q", other, s.Path, s.Collection)
		}
		r.byPath[s.Path] = s
		cols[s.Collection] = s.Path
		r.order = append(r.order, s.Path)
	}
	return r, nil
}

// Lookup returns the schema for a path segment.
func (r *Registry) Lookup(path string) (*SectionSchema, error) {
	s, ok := r.byPath[path]
	if !ok {
		return nil, &UnknownSectionError{Section: path}
	}
	return s, nil
}

// Sections returns every schema in registration order.
func (r *Registry) Sections() []*SectionSchema {
	out := make([]*SectionSchema, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.byPath[p])
	}
	return out
}
