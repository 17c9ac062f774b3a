// Package render turns an aggregate format group into export file content.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"jdp/internal/schema"
)

// Page is everything a renderer needs for one output file.
type Page struct {
	Language schema.Language
	Format   string
	Entries  []*schema.Entry
}

// Renderer writes one page in a specific file format.
type Renderer interface {
	Extension() string
	Render(w io.Writer, page Page) error
}

// Options configure renderers.
type Options struct {
	ListSeparator string
	TagSeparator  string
	// Media maps a media kind to a cell template; "{name}" is replaced
	// with the exported file name.
	Media map[schema.MediaKind]string
}

// DefaultOptions matches the Anki import conventions.
func DefaultOptions() Options {
	return Options{
		ListSeparator: "; ",
		TagSeparator:  " ",
		Media: map[schema.MediaKind]string{
			schema.MediaImage: `<img src="{name}">`,
			schema.MediaAudio: "[sound:{name}]",
			schema.MediaVideo: "[sound:{name}]",
		},
	}
}

// MediaCell formats a list of exported media names.
func (o Options) MediaCell(kind schema.MediaKind, names []string) string {
	tpl := o.Media[kind]
	if tpl == "" {
		tpl = "{name}"
	}
	cells := make([]string, len(names))
	for i, name := range names {
		cells[i] = strings.ReplaceAll(tpl, "{name}", name)
	}
	return strings.Join(cells, o.ListSeparator)
}

var factories = map[string]func(Options) Renderer{
	"txt":  func(o Options) Renderer { return NewTextRenderer(o) },
	"html": func(o Options) Renderer { return NewHTMLRenderer(o) },
}

// New returns the renderer registered under name.
func New(name string, opts Options) (Renderer, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown output %q (available: %s)", name, strings.Join(Available(), ", "))
	}
	return factory(opts), nil
}

// Available lists renderer names.
func Available() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// grammar returns the third column: lexical category for vocabulary, IPA
// for writing, nothing for text.
func grammar(e *schema.Entry) string {
	if e.Grammar != "" {
		return e.Grammar
	}
	return e.IPA
}
