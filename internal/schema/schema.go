// Package schema defines language, record and aggregate data structures for jdp.
package schema

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

const (
	// ManifestName is the file that marks a language directory.
	ManifestName = "language.json"
	// DataFileSuffix is the naming convention for language data files.
	DataFileSuffix = ".jdp-lang.json"
	// StatusReady is the only status that lets a manifest or data file through.
	StatusReady = "ready"
)

// Format names understood by the pipeline.
const (
	FormatVocabulary = "vocabulary"
	FormatWriting    = "writing"
	FormatText       = "text"
)

// Language is a ready language directory discovered from its manifest.
type Language struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Directory string `json:"directory"`
}

// DataFiles walks the language directory and yields every data file.
// Each call walks the filesystem again, so the sequence can be consumed
// any number of times and always reflects the current directory contents.
func (l *Language) DataFiles() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(l.Directory, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), DataFileSuffix) {
				return nil
			}
			if !yield(path, nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

// Meta is the header every data file carries.
type Meta struct {
	Status  string   `json:"status"`
	Format  string   `json:"format"`
	Version string   `json:"version"`
	Tags    []string `json:"tags"`
}

// Ready reports whether the file should be processed at all.
func (m Meta) Ready() bool {
	return m.Status == StatusReady
}

// Format identifies which record shape a batch of records follows.
type Format struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// SchemaKey returns the "{format}-{version}" key used to look up JSON schemas.
func (f Format) SchemaKey() string {
	return f.Name + "-" + f.Version
}

// MediaKind is one of the media reference categories.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// MediaKinds lists media categories in export column order.
var MediaKinds = []MediaKind{MediaImage, MediaAudio, MediaVideo}
