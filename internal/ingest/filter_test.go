package ingest

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jdp/internal/schema"
	"jdp/internal/testutil"
)

func TestFilterMatchTags(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		tags    []string
		want    bool
	}{
		{"any tag matches", "comm*", []string{"noun", "common"}, true},
		{"no tag matches", "verb", []string{"noun", "common"}, false},
		{"wildcard", "*", []string{"noun"}, true},
		{"empty pattern", "", []string{"noun"}, true},
		{"no tags", "*", nil, false},
		{"character class", "[nv]oun", []string{"noun"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Filter{Tag: tt.pattern}
			assert.Equal(t, tt.want, f.MatchTags(tt.tags))
		})
	}
}

func TestFilterMatchFormat(t *testing.T) {
	assert.True(t, Filter{Format: "vocab*"}.MatchFormat("vocabulary"))
	assert.False(t, Filter{Format: "writing"}.MatchFormat("vocabulary"))
	assert.True(t, Filter{}.MatchFormat("text"))
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Filter{Format: "*", Tag: "n?un"}.Validate())
	assert.Error(t, Filter{Tag: "[oops"}.Validate())
}

func collectItems(t *testing.T, s *Scanner, lang *schema.Language) []RawItem {
	t.Helper()
	var items []RawItem
	for item, err := range s.Items(lang) {
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func TestScannerItems(t *testing.T) {
	fx := testutil.NewFixture(t)
	dir := fx.Language("french", "French", "fr", "ready")
	fx.DataFile(dir, "a.jdp-lang.json", testutil.Meta("ready", "vocabulary", "noun", "common"),
		map[string]any{"phrase": "chat"},
		map[string]any{"phrase": "chien"},
	)
	fx.DataFile(dir, "b.jdp-lang.json", testutil.Meta("draft", "vocabulary", "noun"),
		map[string]any{"phrase": "draft"},
	)
	fx.DataFile(dir, "c.jdp-lang.json", testutil.Meta("ready", "writing", "alphabet"),
		map[string]any{"phrase": "a"},
	)
	fx.File(filepath.Join(dir, "notes.json"), "{}")

	lang := &schema.Language{Name: "French", Code: "fr", Directory: dir}

	s := NewScanner(Filter{Format: "*", Tag: "*"}, "en", nil)
	items := collectItems(t, s, lang)
	require.Len(t, items, 3)
	assert.Equal(t, schema.Format{Name: "vocabulary", Version: "1"}, items[0].Format)
	assert.Equal(t, []string{"noun", "common"}, items[0].Tags)
	assert.Equal(t, "writing", items[2].Format.Name)
	assert.Equal(t, 3, s.Stats.Files)
	assert.Equal(t, 1, s.Stats.Skipped)

	s = NewScanner(Filter{Format: "vocabulary", Tag: "comm*"}, "en", nil)
	items = collectItems(t, s, lang)
	require.Len(t, items, 2)

	var phrase struct{ Phrase string }
	require.NoError(t, json.Unmarshal(items[1].Data, &phrase))
	assert.Equal(t, "chien", phrase.Phrase)

	s = NewScanner(Filter{Tag: "verb"}, "en", nil)
	assert.Empty(t, collectItems(t, s, lang))
}

func TestScannerSkipsMalformedFiles(t *testing.T) {
	fx := testutil.NewFixture(t)
	dir := fx.Language("french", "French", "fr", "ready")
	fx.JSON(filepath.Join(dir, "a-broken.jdp-lang.json"), map[string]any{
		"meta": map[string]any{"status": "ready"},
		"data": []any{map[string]any{"phrase": "lost"}},
	})
	fx.File(filepath.Join(dir, "b-garbage.jdp-lang.json"), "{not json")
	fx.DataFile(dir, "c-good.jdp-lang.json", testutil.Meta("ready", "vocabulary", "noun"),
		map[string]any{"phrase": "chat"},
	)

	lang := &schema.Language{Name: "French", Code: "fr", Directory: dir}
	s := NewScanner(Filter{}, "en", nil)
	items := collectItems(t, s, lang)

	require.Len(t, items, 1)
	assert.Equal(t, 2, s.Stats.Malformed)
}

func TestReadDataFileReportsEveryMissingKey(t *testing.T) {
	fx := testutil.NewFixture(t)
	path := fx.JSON(filepath.Join(fx.Root, "x.jdp-lang.json"), map[string]any{
		"meta": map[string]any{"status": "ready"},
		"data": []any{},
	})

	_, _, err := ReadDataFile(path)
	require.Error(t, err)

	var missing []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var md *schema.MalformedDataError
		require.True(t, errors.As(e, &md))
		assert.Equal(t, path, md.Path)
		missing = append(missing, md.Key)
	}
	assert.Equal(t, []string{"format", "version", "tags"}, missing)
	assert.False(t, schema.IsFatal(err))
}

func TestReadDataFileWrongType(t *testing.T) {
	fx := testutil.NewFixture(t)
	path := fx.JSON(filepath.Join(fx.Root, "x.jdp-lang.json"), map[string]any{
		"meta": map[string]any{"status": "ready", "format": "vocabulary", "version": "1", "tags": "noun"},
	})

	_, _, err := ReadDataFile(path)
	var md *schema.MalformedDataError
	require.ErrorAs(t, err, &md)
	assert.Equal(t, "tags", md.Key)
}
