package schema

import (
	"encoding/json"
	"iter"
	"os"
	"path/filepath"
	"time"
)

// NoSubKey is the sub-key used by formats that keep a single entry per phrase.
const NoSubKey = ""

// Entry is one merged aggregate row. Every list holds unique, non-empty
// values in order of first occurrence.
type Entry struct {
	Phrase        string   `json:"phrase"`
	SubKey        string   `json:"-"`
	Transcription string   `json:"transcription,omitempty"`
	Grammar       string   `json:"grammar,omitempty"`
	IPA           string   `json:"ipa,omitempty"`
	Translation   []string `json:"translation,omitempty"`
	Image         []string `json:"image,omitempty"`
	Audio         []string `json:"audio,omitempty"`
	Video         []string `json:"video,omitempty"`
	Note          []string `json:"note,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// Media returns a pointer to the media list of the given kind.
func (e *Entry) Media(kind MediaKind) *[]string {
	switch kind {
	case MediaImage:
		return &e.Image
	case MediaAudio:
		return &e.Audio
	case MediaVideo:
		return &e.Video
	}
	return nil
}

// AppendUnique appends every non-empty value not already present in list.
func AppendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v == "" || contains(list, v) {
			continue
		}
		list = append(list, v)
	}
	return list
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// group is an insertion-ordered map.
type group[V any] struct {
	items map[string]V
	order []string
}

func newGroup[V any]() *group[V] {
	return &group[V]{items: make(map[string]V)}
}

func (g *group[V]) get(key string) (V, bool) {
	v, ok := g.items[key]
	return v, ok
}

func (g *group[V]) put(key string, v V) {
	if _, ok := g.items[key]; !ok {
		g.order = append(g.order, key)
	}
	g.items[key] = v
}

// Aggregate is format -> phrase -> sub-key -> Entry. Iteration follows the
// order in which keys were first inserted.
type Aggregate struct {
	Language    string `json:"language"`
	GeneratedAt string `json:"generated_at"`
	formats     *group[*group[*group[*Entry]]]
}

// NewAggregate creates an empty aggregate for a language code.
func NewAggregate(language string) *Aggregate {
	return &Aggregate{
		Language:    language,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		formats:     newGroup[*group[*group[*Entry]]](),
	}
}

// Upsert returns the entry for the key, creating an empty one on first
// encounter. created reports whether the entry is new.
func (a *Aggregate) Upsert(format, phrase, subKey string) (entry *Entry, created bool) {
	phrases, ok := a.formats.get(format)
	if !ok {
		phrases = newGroup[*group[*Entry]]()
		a.formats.put(format, phrases)
	}
	entries, ok := phrases.get(phrase)
	if !ok {
		entries = newGroup[*Entry]()
		phrases.put(phrase, entries)
	}
	if e, ok := entries.get(subKey); ok {
		return e, false
	}
	e := &Entry{Phrase: phrase, SubKey: subKey}
	entries.put(subKey, e)
	return e, true
}

// Lookup returns the entry for the key, or nil.
func (a *Aggregate) Lookup(format, phrase, subKey string) *Entry {
	phrases, ok := a.formats.get(format)
	if !ok {
		return nil
	}
	entries, ok := phrases.get(phrase)
	if !ok {
		return nil
	}
	e, _ := entries.get(subKey)
	return e
}

// Formats returns format names in first-seen order.
func (a *Aggregate) Formats() []string {
	return append([]string(nil), a.formats.order...)
}

// Entries returns the entries of one format in first-seen order.
func (a *Aggregate) Entries(format string) []*Entry {
	var out []*Entry
	phrases, ok := a.formats.get(format)
	if !ok {
		return out
	}
	for _, phrase := range phrases.order {
		entries := phrases.items[phrase]
		for _, key := range entries.order {
			out = append(out, entries.items[key])
		}
	}
	return out
}

// All yields every entry with its format name.
func (a *Aggregate) All() iter.Seq2[string, *Entry] {
	return func(yield func(string, *Entry) bool) {
		for _, format := range a.formats.order {
			for _, e := range a.Entries(format) {
				if !yield(format, e) {
					return
				}
			}
		}
	}
}

// Count returns the total number of entries.
func (a *Aggregate) Count() int {
	n := 0
	for range a.All() {
		n++
	}
	return n
}

// MarshalJSON writes the nested format, phrase, sub-key mapping. Text
// entries sit under the NoSubKey sentinel, the empty string.
func (a *Aggregate) MarshalJSON() ([]byte, error) {
	data := make(map[string]map[string]map[string]*Entry, len(a.formats.order))
	for format, e := range a.All() {
		if data[format] == nil {
			data[format] = make(map[string]map[string]*Entry)
		}
		if data[format][e.Phrase] == nil {
			data[format][e.Phrase] = make(map[string]*Entry)
		}
		data[format][e.Phrase][e.SubKey] = e
	}

	return json.Marshal(&struct {
		Language    string                                  `json:"language"`
		GeneratedAt string                                  `json:"generated_at"`
		EntryCount  int                                     `json:"entry_count"`
		Data        map[string]map[string]map[string]*Entry `json:"data"`
	}{
		Language:    a.Language,
		GeneratedAt: a.GeneratedAt,
		EntryCount:  a.Count(),
		Data:        data,
	})
}

// Save writes the aggregate as indented JSON.
func (a *Aggregate) Save(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(a)
}
