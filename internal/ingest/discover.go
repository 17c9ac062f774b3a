package ingest

import (
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"jdp/internal/schema"
)

// manifest is the raw shape of language.json. Keys are kept raw so a
// missing key can be told apart from an empty value.
type manifest struct {
	Meta map[string]json.RawMessage `json:"meta"`
	Data map[string]json.RawMessage `json:"data"`
}

// DiscoverLanguages yields a Language for every directory directly under
// rootDir whose name matches pattern (shell glob) and that holds a ready
// manifest. Manifests that are not ready are skipped silently; a malformed
// manifest is yielded as an error.
func DiscoverLanguages(rootDir, pattern string) iter.Seq2[*schema.Language, error] {
	return func(yield func(*schema.Language, error) bool) {
		if pattern == "" {
			pattern = "*"
		}
		matches, err := filepath.Glob(filepath.Join(rootDir, pattern, schema.ManifestName))
		if err != nil {
			yield(nil, fmt.Errorf("bad language pattern %q: %w", pattern, err))
			return
		}

		for _, path := range matches {
			lang, err := LoadManifest(path)
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if lang == nil {
				continue
			}
			if !yield(lang, nil) {
				return
			}
		}
	}
}

// LoadManifest reads one language.json. It returns nil, nil when the
// manifest status is not ready.
func LoadManifest(path string) (*schema.Language, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &schema.MalformedManifestError{Path: path, Err: err}
	}

	status, err := manifestString(path, m.Meta, "status")
	if err != nil {
		return nil, err
	}
	if status != schema.StatusReady {
		return nil, nil
	}

	name, err := manifestString(path, m.Data, "name")
	if err != nil {
		return nil, err
	}
	code, err := manifestString(path, m.Data, "code")
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if _, err := language.Parse(code); err != nil {
		return nil, &schema.MalformedManifestError{Path: path, Key: "code", Err: err}
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	return &schema.Language{
		Name:      strings.TrimSpace(name),
		Code:      code,
		Directory: dir,
	}, nil
}

func manifestString(path string, section map[string]json.RawMessage, key string) (string, error) {
	raw, ok := section[key]
	if !ok {
		return "", &schema.MalformedManifestError{Path: path, Key: key}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &schema.MalformedManifestError{Path: path, Key: key, Err: err}
	}
	return s, nil
}
