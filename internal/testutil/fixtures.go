// Package testutil builds on-disk language source trees for tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Fixture is a temporary source directory.
type Fixture struct {
	t    testing.TB
	Root string
}

// NewFixture creates an empty source root below t.TempDir().
func NewFixture(t testing.TB) *Fixture {
	t.Helper()
	root := filepath.Join(t.TempDir(), "src")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatalf("create fixture root: %v", err)
	}
	return &Fixture{t: t, Root: root}
}

// Language writes <root>/<dir>/language.json and returns the directory.
func (f *Fixture) Language(dir, name, code, status string) string {
	f.t.Helper()
	langDir := filepath.Join(f.Root, dir)
	f.JSON(filepath.Join(langDir, "language.json"), map[string]any{
		"meta": map[string]any{"status": status},
		"data": map[string]any{"name": name, "code": code},
	})
	return langDir
}

// Meta returns a data file header with version "1".
func Meta(status, format string, tags ...string) map[string]any {
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"status":  status,
		"format":  format,
		"version": "1",
		"tags":    tags,
	}
}

// DataFile writes a data file below langDir and returns its path.
func (f *Fixture) DataFile(langDir, rel string, meta map[string]any, data ...map[string]any) string {
	f.t.Helper()
	if data == nil {
		data = []map[string]any{}
	}
	path := filepath.Join(langDir, rel)
	f.JSON(path, map[string]any{"meta": meta, "data": data})
	return path
}

// JSON marshals v into path.
func (f *Fixture) JSON(path string, v any) string {
	f.t.Helper()
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		f.t.Fatalf("marshal fixture: %v", err)
	}
	return f.File(path, string(raw))
}

// File writes content to path, creating parent directories.
func (f *Fixture) File(path, content string) string {
	f.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		f.t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		f.t.Fatalf("write fixture: %v", err)
	}
	return path
}
