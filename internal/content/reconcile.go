package content

const visibleField = "visible"

// ToAPIShape returns the nested view of a stored document. For each group
// with a legacy mapping: a non-null nested object wins as-is (even when it is
// empty); otherwise the object is synthesized from whichever flat fields are
// present, missing ones defaulting to "" or []. A group with neither shape is
// left out. All other keys pass through.
func ToAPIShape(schema *SectionSchema, doc Fields) Fields {
	out := make(Fields, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	if schema == nil {
		return out
	}
	for _, g := range schema.Groups {
		if len(g.Legacy) == 0 {
			continue
		}
		if v, ok := doc[g.Name]; ok && v != nil {
			continue
		}
		delete(out, g.Name)
		if !g.hasLegacyIn(doc) {
			continue
		}
		nested := make(map[string]any, len(g.Legacy)+1)
		for _, lf := range g.Legacy {
			if v, ok := doc[lf.Flat]; ok && v != nil {
				nested[lf.Nested] = v
			} else {
				nested[lf.Nested] = lf.Kind.zero()
			}
		}
		if g.VisibilityFlag != "" {
			if _, set := nested[visibleField]; !set {
				if v, ok := doc[g.VisibilityFlag]; ok {
					nested[visibleField] = v
				}
			}
		}
		out[g.Name] = nested
	}
	return out
}

// ToDBShape prepares a sanitized write. Each nested group present in input is
// stored verbatim and also written through to its legacy flat fields (and the
// visibility flag) so older readers keep working. Other keys are copied.
func ToDBShape(schema *SectionSchema, input Fields) Fields {
	out := make(Fields, len(input))
	for k, v := range input {
		out[k] = v
	}
	if schema == nil {
		return out
	}
	for _, g := range schema.Groups {
		v, ok := input[g.Name]
		if !ok {
			continue
		}
		nested, ok := asObject(v)
		if !ok {
			continue
		}
		for _, lf := range g.Legacy {
			if nv, ok := nested[lf.Nested]; ok && nv != nil {
				out[lf.Flat] = nv
			} else {
				out[lf.Flat] = lf.Kind.zero()
			}
		}
		if g.VisibilityFlag != "" {
			if vis, ok := nested[visibleField]; ok {
				out[g.VisibilityFlag] = vis
			}
		}
	}
	return out
}
