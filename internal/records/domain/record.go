package domain

import "strings"

// IDKey is the reserved key the store-assigned identifier is merged under.
const IDKey = "id"

// Record is one loosely-typed entity as read from or written to a collection.
type Record map[string]any

// ID returns the merged identifier, or "" for a body that was never stored.
func (r Record) ID() string {
	id, _ := r[IDKey].(string)
	return id
}

// String returns the field as a string, or "" when absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Bool returns the field as a bool; absent reads as false.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Clone returns a deep copy so edits never leak back into a snapshot.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = deepCopy(v)
	}
	return out
}

// Body returns a deep copy without the identifier, ready to be written.
func (r Record) Body() Record {
	out := r.Clone()
	if out == nil {
		return Record{}
	}
	delete(out, IDKey)
	return out
}

// WithID returns a copy of body with id merged under IDKey.
func WithID(body Record, id string) Record {
	out := body.Clone()
	if out == nil {
		out = Record{}
	}
	out[IDKey] = id
	return out
}

// Normalize converts nested maps and slices coming from JSON or driver
// decoding into the shapes the rest of the code walks: map[string]any and []any.
func Normalize(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = normalizeValue(v)
	}
	return out
}

// TrimStrings trims whitespace from the listed top-level string fields.
func (r Record) TrimStrings(fields ...string) {
	for _, f := range fields {
		if s, ok := r[f].(string); ok {
			r[f] = strings.TrimSpace(s)
		}
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case Record:
		return map[string]any(Normalize(t))
	case map[string]any:
		return map[string]any(Normalize(Record(t)))
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = map[string]any(Normalize(Record(m)))
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case Record:
		return map[string]any(t.Clone())
	case map[string]any:
		return map[string]any(Record(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, m := range t {
			out[i] = map[string]any(Record(m).Clone())
		}
		return out
	default:
		return v
	}
}
