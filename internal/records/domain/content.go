package domain

import "fmt"

// ContentDoc is a singleton document backing one themed landing page.
type ContentDoc struct {
	Key        string
	Collection Collection
	ID         string
	// Merge writes with merge semantics instead of replacing the document.
	Merge    bool
	Sections []string
	Icons    []IconRule
	defaults func() Record
}

// Defaults returns the empty shape served when the document does not exist.
func (d ContentDoc) Defaults() Record {
	return d.defaults()
}

// Schema exposes the document as a schema so nested-array editing and
// icon validation share one code path with collections.
func (d ContentDoc) Schema() Schema {
	return Schema{
		Collection: d.Collection,
		Sections:   d.Sections,
		Icons:      d.Icons,
	}
}

var contentDocs = map[string]ContentDoc{
	"branding": {
		Key:        "branding",
		Collection: "branding",
		ID:         "brandingData",
		Merge:      true,
		Sections:   []string{"services", "process", "faqs"},
		Icons:      []IconRule{{Section: "services", Set: BrandingServiceIcons}},
		defaults: func() Record {
			return Record{
				"hero":     map[string]any{"title": "", "description": ""},
				"services": []any{},
				"process":  []any{},
				"faqs":     []any{},
				"cta":      map[string]any{"title": "", "description": ""},
			}
		},
	},
	"performance": {
		Key:        "performance",
		Collection: "performanceAdmin",
		ID:         "content",
		Merge:      true,
		Sections:   []string{"partnerReasons", "benefits", "services", "metrics", "faq"},
		Icons: []IconRule{
			{Section: "partnerReasons", Set: PerformanceReasonIcons},
			{Section: "benefits", Set: PerformanceBenefitIcons},
			{Section: "services", Set: PerformanceServiceIcons},
			{Section: "metrics", Set: PerformanceMetricIcons},
		},
		defaults: func() Record {
			return Record{
				"hero":           map[string]any{"title": "", "subtitle": ""},
				"partnerReasons": []any{},
				"benefits":       []any{},
				"services":       []any{},
				"metrics":        []any{},
				"faq":            []any{},
			}
		},
	},
	"graphic": {
		Key:        "graphic",
		Collection: "graphicAdmin",
		ID:         "content",
		Sections:   []string{"services", "faqs"},
		Icons:      []IconRule{{Section: "services", Set: GraphicServiceIcons}},
		defaults: func() Record {
			return Record{
				"heroTitle":    "",
				"heroSubtitle": "",
				"services":     []any{},
				"faqs":         []any{},
			}
		},
	},
}

// LookupContent resolves a content document by its API key.
func LookupContent(key string) (ContentDoc, error) {
	d, ok := contentDocs[key]
	if !ok {
		return ContentDoc{}, fmt.Errorf("%w: content %q", ErrUnknownCollection, key)
	}
	return d, nil
}

// AllContentDocs lists every singleton content document.
func AllContentDocs() []ContentDoc {
	return []ContentDoc{contentDocs["branding"], contentDocs["performance"], contentDocs["graphic"]}
}
