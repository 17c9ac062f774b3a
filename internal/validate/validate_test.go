package validate

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jdp/internal/ingest"
	"jdp/internal/schema"
	"jdp/internal/testutil"
)

const vocabularySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["meta", "data"],
  "properties": {
    "data": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["phrase"],
        "properties": {
          "phrase": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

func setup(t *testing.T) (*testutil.Fixture, string, Schemas) {
	t.Helper()
	f := testutil.NewFixture(t)
	schemaDir := filepath.Join(filepath.Dir(f.Root), "schema")
	f.File(filepath.Join(schemaDir, "vocabulary-1.json"), vocabularySchema)
	f.File(filepath.Join(schemaDir, "nested", "text-1.json"), `{"type": "object"}`)

	schemas, err := LoadSchemas(schemaDir)
	require.NoError(t, err)
	return f, schemaDir, schemas
}

func TestLoadSchemas(t *testing.T) {
	_, _, schemas := setup(t)
	assert.Equal(t, []string{"text-1", "vocabulary-1"}, schemas.Keys())
}

func TestLoadSchemasInvalid(t *testing.T) {
	f := testutil.NewFixture(t)
	dir := filepath.Join(filepath.Dir(f.Root), "schema")
	f.File(filepath.Join(dir, "broken-1.json"), `{"type": 12}`)

	_, err := LoadSchemas(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	f, _, schemas := setup(t)
	langDir := f.Language("french", "French", "fr", schema.StatusReady)

	f.DataFile(langDir, "good.jdp-lang.json",
		testutil.Meta(schema.StatusReady, schema.FormatVocabulary),
		map[string]any{"phrase": "chat"})
	bad := f.DataFile(langDir, "sub/bad.jdp-lang.json",
		testutil.Meta(schema.StatusReady, schema.FormatVocabulary),
		map[string]any{"phrase": "chat"},
		map[string]any{"translation": "dog"})
	noSchema := f.DataFile(langDir, "writing.jdp-lang.json",
		testutil.Meta(schema.StatusReady, schema.FormatWriting))
	noMeta := f.JSON(filepath.Join(langDir, "nometa.json"), map[string]any{"data": []any{}})
	noVersion := f.JSON(filepath.Join(langDir, "noversion.json"), map[string]any{
		"meta": map[string]any{"status": "ready", "format": "vocabulary"},
	})
	broken := f.File(filepath.Join(langDir, "broken.json"), "{")

	violations, err := Validate(schemas, langDir)
	require.NoError(t, err)

	byPath := make(map[string][]Violation)
	for _, v := range violations {
		byPath[v.Path] = append(byPath[v.Path], v)
	}

	assert.Len(t, byPath, 5, "manifest and valid file should not be reported")

	require.Len(t, byPath[bad], 1)
	assert.Equal(t, "data.1", byPath[bad][0].Field)
	assert.Contains(t, byPath[bad][0].Message, "phrase")

	require.Len(t, byPath[noSchema], 1)
	assert.Contains(t, byPath[noSchema][0].Message, "no schema for 'writing-1'")

	require.Len(t, byPath[noMeta], 1)
	assert.Contains(t, byPath[noMeta][0].Message, "'meta'")

	require.Len(t, byPath[noVersion], 1)
	assert.Contains(t, byPath[noVersion][0].Message, "'version'")

	require.Len(t, byPath[broken], 1)
	assert.True(t, strings.HasPrefix(byPath[broken][0].String(), broken+": invalid JSON"))
}

func TestFileRejectsWhatBuildRejects(t *testing.T) {
	f, _, schemas := setup(t)
	langDir := f.Language("french", "French", "fr", schema.StatusReady)

	tests := []struct {
		name  string
		meta  map[string]any
		field string
	}{
		{"numeric version", map[string]any{"status": "ready", "format": "vocabulary", "version": 1, "tags": []string{}}, "meta.version"},
		{"numeric status", map[string]any{"status": 1, "format": "vocabulary", "version": "1", "tags": []string{}}, "meta.status"},
		{"tags not a list", map[string]any{"status": "ready", "format": "vocabulary", "version": "1", "tags": "noun"}, "meta.tags"},
		{"missing tags", map[string]any{"status": "ready", "format": "vocabulary", "version": "1"}, "meta"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := f.JSON(filepath.Join(langDir, fmt.Sprintf("case%d.jdp-lang.json", i)), map[string]any{
				"meta": tt.meta,
				"data": []any{map[string]any{"phrase": "chat"}},
			})

			violations := File(schemas, path)
			require.Len(t, violations, 1)
			assert.Equal(t, tt.field, violations[0].Field)

			_, _, err := ingest.ReadDataFile(path)
			assert.ErrorIs(t, err, schema.ErrMalformed)
		})
	}
}

func TestValidateMissingDir(t *testing.T) {
	_, err := Validate(Schemas{}, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestViolationString(t *testing.T) {
	assert.Equal(t, "a.json (data.0): bad", Violation{Path: "a.json", Field: "data.0", Message: "bad"}.String())
	assert.Equal(t, "a.json: bad", Violation{Path: "a.json", Message: "bad"}.String())
}
