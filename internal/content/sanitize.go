package content

// Sanitize keeps only the keys the schema allows. Unknown keys are dropped
// without error. String-array fields keep their string elements only, and an
// object field holding a non-object value is dropped. An empty result means
// "no changes requested".
func Sanitize(schema *SectionSchema, input map[string]any) Fields {
	out := Fields{}
	if schema == nil || len(input) == 0 {
		return out
	}
	for key, kind := range schema.allowed {
		v, ok := input[key]
		if !ok {
			continue
		}
		switch kind {
		case KindStringArray:
			if arr, ok := stringsOnly(v); ok {
				out[key] = arr
			}
		case KindObject:
			if v == nil {
				out[key] = nil
			} else if obj, ok := asObject(v); ok {
				out[key] = obj
			}
		default:
			out[key] = v
		}
	}
	return out
}

func stringsOnly(v any) ([]any, bool) {
	switch arr := v.(type) {
	case []any:
		out := make([]any, 0, len(arr))
		for _, e := range arr {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	case []string:
		out := make([]any, 0, len(arr))
		for _, s := range arr {
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
