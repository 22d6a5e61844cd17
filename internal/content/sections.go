package content

// Section table of the impact report. Only flex-a still carries legacy flat
// fields; every other section is stored in its nested shape only.

var headerFields = []string{"label", "title", "titleHighlight", "subtitle"}

func mustSchema(path, collection string, fields map[string]Kind, groups ...NestedGroup) *SectionSchema {
	s, err := NewSchema(path, collection, fields, groups...)
	if err != nil {
		panic(err)
	}
	return s
}

// DefaultSections returns the schemas of every section of the report.
func DefaultSections() []*SectionSchema {
	return []*SectionSchema{
		mustSchema("hero", "hero", map[string]Kind{
			"title":              KindString,
			"titleHighlight":     KindString,
			"subtitle":           KindString,
			"backgroundImageUrl": KindString,
			"backgroundVideoUrl": KindString,
			"overlayOpacity":     KindNumber,
			"gradientColors":     KindStringArray,
			"visible":            KindBool,
		}, NestedGroup{Name: "cta", Fields: []string{"label", "url", "visible"}}),

		mustSchema("mission", "mission", map[string]Kind{
			"label":           KindString,
			"title":           KindString,
			"body":            KindString,
			"imageUrl":        KindString,
			"imageAlt":        KindString,
			"stats":           KindObjectArray,
			"backgroundColor": KindString,
			"visible":         KindBool,
		}),

		mustSchema("defaults", "defaults", map[string]Kind{
			"primaryColor":      KindString,
			"secondaryColor":    KindString,
			"accentColor":       KindString,
			"backgroundColor":   KindString,
			"textColor":         KindString,
			"fontFamily":        KindString,
			"headingFontFamily": KindString,
			"colorSwatches":     KindStringArray,
			"gradientPresets":   KindStringArray,
		}),

		mustSchema("flex-a", "flex_a", map[string]Kind{
			"body":            KindString,
			"imageUrl":        KindString,
			"imageAlt":        KindString,
			"imagePosition":   KindString,
			"bullets":         KindObjectArray,
			"backgroundColor": KindString,
			"colorSwatches":   KindStringArray,
			"visible":         KindBool,
		},
			NestedGroup{
				Name:   "header",
				Fields: headerFields,
				Legacy: []LegacyField{
					{Flat: "headerLabel", Nested: "label", Kind: KindString},
					{Flat: "headline", Nested: "title", Kind: KindString},
					{Flat: "headlineHighlight", Nested: "titleHighlight", Kind: KindString},
					{Flat: "subhead", Nested: "subtitle", Kind: KindString},
				},
			},
			NestedGroup{
				Name:   "quote",
				Fields: []string{"text", "author", "role", "visible"},
				Legacy: []LegacyField{
					{Flat: "quoteText", Nested: "text", Kind: KindString},
					{Flat: "quoteAuthor", Nested: "author", Kind: KindString},
					{Flat: "quoteRole", Nested: "role", Kind: KindString},
				},
				VisibilityFlag: "quoteVisible",
			},
		),

		mustSchema("flex-b", "flex_b", map[string]Kind{
			"columns":         KindObjectArray,
			"backgroundColor": KindString,
			"colorSwatches":   KindStringArray,
			"visible":         KindBool,
		}, NestedGroup{Name: "header", Fields: headerFields}),

		mustSchema("flex-c", "flex_c", map[string]Kind{
			"cards":           KindObjectArray,
			"backgroundColor": KindString,
			"colorSwatches":   KindStringArray,
			"visible":         KindBool,
		},
			NestedGroup{Name: "header", Fields: headerFields},
			NestedGroup{Name: "cta", Fields: []string{"label", "url", "visible"}},
		),

		mustSchema("metrics", "metrics", map[string]Kind{
			"title":           KindString,
			"subtitle":        KindString,
			"items":           KindObjectArray,
			"backgroundColor": KindString,
			"visible":         KindBool,
		}),

		mustSchema("stories", "stories", map[string]Kind{
			"title":    KindString,
			"subtitle": KindString,
			"stories":  KindObjectArray,
			"visible":  KindBool,
		}),

		mustSchema("partners", "partners", map[string]Kind{
			"title":   KindString,
			"logos":   KindObjectArray,
			"visible": KindBool,
		}),

		mustSchema("donate", "donate", map[string]Kind{
			"title":           KindString,
			"body":            KindString,
			"buttonLabel":     KindString,
			"buttonUrl":       KindString,
			"amounts":         KindArray,
			"backgroundColor": KindString,
			"gradientColors":  KindStringArray,
			"visible":         KindBool,
		}),

		mustSchema("footer", "footer", map[string]Kind{
			"organizationName": KindString,
			"address":          KindString,
			"email":            KindString,
			"phone":            KindString,
			"links":            KindObjectArray,
			"socials":          KindObjectArray,
			"copyright":        KindString,
			"backgroundColor":  KindString,
			"visible":          KindBool,
		}),
	}
}

// DefaultRegistry returns a registry over DefaultSections.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultSections()...)
	if err != nil {
		panic(err)
	}
	return r
}
