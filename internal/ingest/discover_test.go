package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jdp/internal/schema"
	"jdp/internal/testutil"
)

func collectLanguages(t *testing.T, root, pattern string) ([]*schema.Language, error) {
	t.Helper()
	var langs []*schema.Language
	for lang, err := range DiscoverLanguages(root, pattern) {
		if err != nil {
			return langs, err
		}
		langs = append(langs, lang)
	}
	return langs, nil
}

func TestDiscoverLanguagesReadyOnly(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.Language("french", "French", "fr", "ready")
	fx.Language("german", "German", "de", "draft")
	fx.Language("spanish", "Spanish", "es", "ready")

	langs, err := collectLanguages(t, fx.Root, "*")
	require.NoError(t, err)
	require.Len(t, langs, 2)

	assert.Equal(t, "French", langs[0].Name)
	assert.Equal(t, "fr", langs[0].Code)
	assert.Equal(t, filepath.Join(fx.Root, "french"), langs[0].Directory)
	assert.Equal(t, "es", langs[1].Code)
}

func TestDiscoverLanguagesPattern(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.Language("french", "French", "fr", "ready")
	fx.Language("finnish", "Finnish", "fi", "ready")
	fx.Language("german", "German", "de", "ready")

	langs, err := collectLanguages(t, fx.Root, "f*")
	require.NoError(t, err)

	var codes []string
	for _, l := range langs {
		codes = append(codes, l.Code)
	}
	assert.Equal(t, []string{"fi", "fr"}, codes)
}

func TestDiscoverLanguagesIgnoresDirsWithoutManifest(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.File(filepath.Join(fx.Root, "stray", "readme.txt"), "nothing here")
	fx.Language("french", "French", "fr", "ready")

	langs, err := collectLanguages(t, fx.Root, "*")
	require.NoError(t, err)
	assert.Len(t, langs, 1)
}

func TestDiscoverLanguagesMalformedManifest(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.JSON(filepath.Join(fx.Root, "broken", "language.json"), map[string]any{
		"meta": map[string]any{"status": "ready"},
		"data": map[string]any{"name": "Broken"},
	})

	_, err := collectLanguages(t, fx.Root, "*")
	require.Error(t, err)

	var malformed *schema.MalformedManifestError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "code", malformed.Key)
	assert.ErrorIs(t, err, schema.ErrMalformed)
}

func TestDiscoverLanguagesMissingStatus(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.JSON(filepath.Join(fx.Root, "nostatus", "language.json"), map[string]any{
		"meta": map[string]any{},
		"data": map[string]any{"name": "X", "code": "xx"},
	})

	_, err := collectLanguages(t, fx.Root, "*")
	var malformed *schema.MalformedManifestError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "status", malformed.Key)
}

func TestDiscoverLanguagesInvalidCode(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.Language("bad", "Bad", "not a code!", "ready")

	_, err := collectLanguages(t, fx.Root, "*")
	var malformed *schema.MalformedManifestError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "code", malformed.Key)
}

func TestDiscoverLanguagesBadPattern(t *testing.T) {
	fx := testutil.NewFixture(t)
	_, err := collectLanguages(t, fx.Root, "[")
	assert.Error(t, err)
}
