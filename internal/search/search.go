// Package search filters an already-loaded snapshot of records. It never
// reaches the store.
package search

import (
	"sort"
	"strings"

	"github.com/novaframes/content-admin/internal/records/domain"
)

// Query narrows a snapshot. Zero values match everything.
type Query struct {
	Term string
	// Fields are the record fields Term is matched against.
	Fields   []string
	Category string
	// Discussed, when set, keeps contact messages whose flag equals it.
	Discussed *bool
}

// Filter returns the records matching q, preserving snapshot order.
func Filter(records []domain.Record, q Query) []domain.Record {
	term := strings.ToLower(q.Term)

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if q.Category != "" && r.String("category") != q.Category {
			continue
		}
		if q.Discussed != nil && r.Bool("discussed") != *q.Discussed {
			continue
		}
		if term != "" && !matches(r, q.Fields, term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r domain.Record, fields []string, term string) bool {
	for _, f := range fields {
		if text, ok := searchable(r[f]); ok && strings.Contains(strings.ToLower(text), term) {
			return true
		}
	}
	return false
}

// searchable renders strings and string lists; anything else never matches.
func searchable(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []string:
		return strings.Join(t, ", "), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), len(parts) > 0
	default:
		return "", false
	}
}

// Categories lists the distinct non-empty project categories, sorted.
func Categories(records []domain.Record) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		if c := r.String("category"); c != "" {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
