package domain

import (
	"fmt"
	"strings"
)

// Collection names a group of like-kind records in the document store.
type Collection string

const (
	Projects  Collection = "projects"
	Clients   Collection = "clients"
	Services  Collection = "services"
	Packages  Collection = "packages"
	TopBrands Collection = "topbrands"
	FAQs      Collection = "faqs"
	Contact   Collection = "contact"
	Images    Collection = "images"
)

// ImageKind says how an image field stores its URL(s).
type ImageKind int

const (
	// ImageSingle is a field holding one URL string.
	ImageSingle ImageKind = iota
	// ImageList is a field holding a list of URL strings.
	ImageList
	// ImageNested is an array of objects each holding a URL under SubField.
	ImageNested
)

type ImageField struct {
	Field    string
	Kind     ImageKind
	SubField string
}

// Schema describes the per-screen knowledge about one collection.
// Records themselves stay schemaless.
type Schema struct {
	Collection   Collection
	SearchFields []string
	ImageFields  []ImageField
	BlobPrefix   string
	Required     []string
	Trim         []string
	Sections     []string
	Icons        []IconRule
}

var schemas = map[Collection]Schema{
	Projects: {
		Collection:   Projects,
		SearchFields: []string{"title", "description"},
		ImageFields:  []ImageField{{Field: "images", Kind: ImageList}},
		BlobPrefix:   "projects",
		Required:     []string{"title", "images"},
	},
	Clients: {
		Collection:   Clients,
		SearchFields: []string{"name", "review"},
		ImageFields:  []ImageField{{Field: "image", Kind: ImageSingle}},
		BlobPrefix:   "client_images",
		Required:     []string{"name"},
	},
	Services: {
		Collection:   Services,
		SearchFields: []string{"name", "description"},
		ImageFields:  []ImageField{{Field: "portfolio", Kind: ImageNested, SubField: "imageUrl"}},
		BlobPrefix:   "portfolio",
		Required:     []string{"name"},
		Sections:     []string{"benefits", "portfolio", "faqs"},
	},
	Packages: {
		Collection:   Packages,
		SearchFields: []string{"name", "bestFor"},
		Required:     []string{"name", "price"},
		Sections:     []string{"features", "faqs", "stats", "serviceFeatures"},
		Icons:        []IconRule{{Section: "stats", Set: PackageStatIcons}},
	},
	TopBrands: {
		Collection:   TopBrands,
		SearchFields: []string{"brandName", "brandType", "review"},
		ImageFields:  []ImageField{{Field: "imageUrl", Kind: ImageSingle}},
		BlobPrefix:   "brands",
		Required:     []string{"brandName"},
	},
	FAQs: {
		Collection:   FAQs,
		SearchFields: []string{"question", "answer"},
		Required:     []string{"question", "answer"},
		Trim:         []string{"question", "answer"},
	},
	Contact: {
		Collection:   Contact,
		SearchFields: []string{"name", "email", "phone", "services"},
	},
	Images: {
		Collection:   Images,
		SearchFields: []string{"title", "description"},
		ImageFields:  []ImageField{{Field: "url", Kind: ImageSingle}},
		BlobPrefix:   "images",
	},
}

// Lookup returns the schema for a collection name coming from the outside.
func Lookup(name string) (Schema, error) {
	s, ok := schemas[Collection(name)]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return s, nil
}

// MustSchema is Lookup for compile-time collection constants.
func MustSchema(c Collection) Schema {
	s, err := Lookup(string(c))
	if err != nil {
		panic(err)
	}
	return s
}

// AllSchemas lists every collection schema in a stable order.
func AllSchemas() []Schema {
	order := []Collection{Projects, Clients, Services, Packages, TopBrands, FAQs, Contact, Images}
	out := make([]Schema, 0, len(order))
	for _, c := range order {
		out = append(out, schemas[c])
	}
	return out
}

// HasSection reports whether section is an editable array of this collection.
func (s Schema) HasSection(section string) bool {
	for _, sec := range s.Sections {
		if sec == section {
			return true
		}
	}
	return false
}

// Prepare trims, fills icon defaults and checks required fields on a body
// about to be written. It mutates body.
func (s Schema) Prepare(body Record) error {
	return s.prepare(body, false)
}

// PreparePatch is Prepare for a partial update: required fields may be
// absent, but a required field that is present must not be empty.
func (s Schema) PreparePatch(body Record) error {
	return s.prepare(body, true)
}

func (s Schema) prepare(body Record, patch bool) error {
	body.TrimStrings(s.Trim...)
	if err := ApplyIcons(body, s.Icons); err != nil {
		return err
	}
	for _, f := range s.Required {
		v, present := body[f]
		if patch && !present {
			continue
		}
		if isEmpty(v) {
			return fmt.Errorf("%w: %s is required", ErrInvalidRecord, f)
		}
	}
	return nil
}

// ImageField returns the image field named field, if the schema has one.
func (s Schema) ImageField(field string) (ImageField, bool) {
	for _, f := range s.ImageFields {
		if f.Field == field {
			return f, true
		}
	}
	return ImageField{}, false
}

// ImageURLs lists every blob URL the record references through its image fields.
func (s Schema) ImageURLs(r Record) []string {
	var urls []string
	for _, f := range s.ImageFields {
		urls = append(urls, f.URLs(r)...)
	}
	return urls
}

// URLs extracts the URL strings this field holds in r.
func (f ImageField) URLs(r Record) []string {
	var urls []string
	switch f.Kind {
	case ImageSingle:
		if u := r.String(f.Field); u != "" {
			urls = append(urls, u)
		}
	case ImageList:
		urls = append(urls, stringsOf(r[f.Field])...)
	case ImageNested:
		items, _ := r[f.Field].([]any)
		for _, raw := range items {
			if item, ok := raw.(map[string]any); ok {
				if u, _ := item[f.SubField].(string); u != "" {
					urls = append(urls, u)
				}
			}
		}
	}
	return urls
}

func stringsOf(v any) []string {
	var out []string
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(stringsOf(t)) == 0 && !hasNonString(t)
	case []string:
		return len(stringsOf(t)) == 0
	default:
		return false
	}
}

func hasNonString(items []any) bool {
	for _, e := range items {
		if _, ok := e.(string); !ok && e != nil {
			return true
		}
	}
	return false
}
