// Package validate checks data files against JSON schemas.
package validate

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"jdp/internal/schema"
)

// Violation is one problem found in a data file. Field is empty for problems
// that concern the whole file.
type Violation struct {
	Path    string
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.Field == "" {
		return fmt.Sprintf("%s: %s", v.Path, v.Message)
	}
	return fmt.Sprintf("%s (%s): %s", v.Path, v.Field, v.Message)
}

// Schemas maps "<format>-<version>" to a compiled schema.
type Schemas map[string]*gojsonschema.Schema

// Keys returns the schema keys in sorted order.
func (s Schemas) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadSchemas compiles every *.json file under dir, keyed by file name
// without extension.
func LoadSchemas(dir string) (Schemas, error) {
	schemas := make(Schemas)
	err := walkJSON(dir, func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return fmt.Errorf("failed to load schema file %s: %w", path, err)
		}
		key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		schemas[key] = compiled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schemas, nil
}

// Validate checks every *.json file under dataDir except language manifests.
// Violations never abort the run; only an unreadable directory does.
func Validate(schemas Schemas, dataDir string) ([]Violation, error) {
	var violations []Violation
	err := walkJSON(dataDir, func(path string) error {
		if filepath.Base(path) == schema.ManifestName {
			return nil
		}
		violations = append(violations, File(schemas, path)...)
		return nil
	})
	return violations, err
}

// File validates one data file.
func File(schemas Schemas, path string) []Violation {
	fail := func(field, format string, args ...any) []Violation {
		return []Violation{{Path: path, Field: field, Message: fmt.Sprintf(format, args...)}}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail("", "%v", err)
	}

	var doc struct {
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fail("", "invalid JSON: %v", err)
	}
	if doc.Meta == nil {
		return fail("", "missing required 'meta' key")
	}
	for _, key := range []string{"status", "format", "version", "tags"} {
		if _, ok := doc.Meta[key]; !ok {
			return fail("meta", "missing required '%s' key", key)
		}
	}
	for _, key := range []string{"status", "format", "version"} {
		if _, ok := doc.Meta[key].(string); !ok {
			return fail("meta."+key, "must be a string, got %T", doc.Meta[key])
		}
	}
	if !isStringList(doc.Meta["tags"]) {
		return fail("meta.tags", "must be a list of strings")
	}

	key := schema.Format{
		Name:    doc.Meta["format"].(string),
		Version: doc.Meta["version"].(string),
	}.SchemaKey()
	compiled, ok := schemas[key]
	if !ok {
		return fail("meta", "no schema for '%s'", key)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fail("", "validation error: %v", err)
	}

	var violations []Violation
	for _, desc := range result.Errors() {
		violations = append(violations, Violation{
			Path:    path,
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return violations
}

// isStringList reports whether v decodes into a []string. A JSON null does.
func isStringList(v any) bool {
	if v == nil {
		return true
	}
	list, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range list {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

func walkJSON(dir string, fn func(path string) error) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		return fn(path)
	})
}
