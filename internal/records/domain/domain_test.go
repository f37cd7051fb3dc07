package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_CloneIsDeep(t *testing.T) {
	orig := Record{
		"id":    "abc",
		"stats": []any{map[string]any{"label": "Clients", "icon": "Users"}},
		"tags":  []string{"a"},
	}

	cp := orig.Clone()
	cp["stats"].([]any)[0].(map[string]any)["label"] = "changed"
	cp["tags"].([]string)[0] = "b"

	assert.Equal(t, "Clients", orig["stats"].([]any)[0].(map[string]any)["label"])
	assert.Equal(t, "a", orig["tags"].([]string)[0])
}

func TestRecord_BodyStripsID(t *testing.T) {
	r := Record{"id": "abc", "name": "Acme"}
	body := r.Body()

	assert.NotContains(t, body, IDKey)
	assert.Equal(t, "abc", r.ID())
	assert.Equal(t, "abc", WithID(body, "abc").ID())
}

func TestNormalize(t *testing.T) {
	r := Normalize(Record{
		"images": []string{"u1", "u2"},
		"nested": Record{"k": []map[string]any{{"a": 1}}},
	})

	assert.Equal(t, []any{"u1", "u2"}, r["images"])
	nested := r["nested"].(map[string]any)
	assert.Equal(t, []any{map[string]any{"a": 1}}, nested["k"])
}

func TestApplyIcons(t *testing.T) {
	rules := []IconRule{{Section: "stats", Set: PackageStatIcons}}

	t.Run("fills default", func(t *testing.T) {
		r := Record{"stats": []any{map[string]any{"label": "x"}}}
		require.NoError(t, ApplyIcons(r, rules))
		assert.Equal(t, "Award", r["stats"].([]any)[0].(map[string]any)["icon"])
	})

	t.Run("accepts member", func(t *testing.T) {
		r := Record{"stats": []any{map[string]any{"icon": "ThumbsUp"}}}
		assert.NoError(t, ApplyIcons(r, rules))
	})

	t.Run("rejects outsider", func(t *testing.T) {
		r := Record{"stats": []any{map[string]any{"icon": "Palette"}}}
		err := ApplyIcons(r, rules)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidIcon))
		assert.Contains(t, err.Error(), "stats[0]")
	})
}

func TestSchema_Prepare(t *testing.T) {
	faqs := MustSchema(FAQs)

	body := Record{"question": "  Q1 ", "answer": "A1"}
	require.NoError(t, faqs.Prepare(body))
	assert.Equal(t, "Q1", body["question"])

	err := faqs.Prepare(Record{"question": "Q", "answer": "   "})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	projects := MustSchema(Projects)
	err = projects.Prepare(Record{"title": "P", "images": []any{}})
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.NoError(t, projects.Prepare(Record{"title": "P", "images": []any{"https://x/1.jpg"}}))
}

func TestSchema_PreparePatch(t *testing.T) {
	faqs := MustSchema(FAQs)

	body := Record{"answer": " A2 "}
	require.NoError(t, faqs.PreparePatch(body))
	assert.Equal(t, "A2", body["answer"])

	assert.ErrorIs(t, faqs.PreparePatch(Record{"question": ""}), ErrInvalidRecord)

	f, ok := MustSchema(Clients).ImageField("image")
	require.True(t, ok)
	assert.Equal(t, ImageSingle, f.Kind)
	_, ok = MustSchema(Clients).ImageField("name")
	assert.False(t, ok)
}

func TestSchema_ImageURLs(t *testing.T) {
	services := MustSchema(Services)
	r := Record{"portfolio": []any{
		map[string]any{"imageUrl": "https://x/a.jpg"},
		map[string]any{"imageUrl": ""},
		map[string]any{"name": "no image"},
	}}
	assert.Equal(t, []string{"https://x/a.jpg"}, services.ImageURLs(r))

	projects := MustSchema(Projects)
	assert.Equal(t, []string{"u1", "u2"}, projects.ImageURLs(Record{"images": []any{"u1", nil, "u2"}}))
}

func TestLookup(t *testing.T) {
	_, err := Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownCollection)

	s, err := Lookup("topbrands")
	require.NoError(t, err)
	assert.Equal(t, "brands", s.BlobPrefix)

	doc, err := LookupContent("performance")
	require.NoError(t, err)
	assert.Equal(t, Collection("performanceAdmin"), doc.Collection)
	assert.Contains(t, doc.Defaults(), "metrics")
}
