package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path"

	"jdp/internal/schema"
)

// requiredMetaKeys must be present in every data file header.
var requiredMetaKeys = []string{"status", "format", "version", "tags"}

// Filter selects data files by format and tag. Both fields are shell globs;
// an empty pattern matches everything.
type Filter struct {
	Format string
	Tag    string
}

// Validate reports a syntactically broken pattern.
func (f Filter) Validate() error {
	for _, p := range []string{f.Format, f.Tag} {
		if _, err := path.Match(orAll(p), ""); err != nil {
			return fmt.Errorf("bad pattern %q: %w", p, err)
		}
	}
	return nil
}

// MatchFormat reports whether the format name matches the format pattern.
func (f Filter) MatchFormat(format string) bool {
	ok, _ := path.Match(orAll(f.Format), format)
	return ok
}

// MatchTags reports whether at least one tag matches the tag pattern.
func (f Filter) MatchTags(tags []string) bool {
	for _, tag := range tags {
		if ok, _ := path.Match(orAll(f.Tag), tag); ok {
			return true
		}
	}
	return false
}

func orAll(pattern string) string {
	if pattern == "" {
		return "*"
	}
	return pattern
}

// RawItem is one element of a data file's data array, tagged with the
// header of the file it came from.
type RawItem struct {
	Data   json.RawMessage
	Format schema.Format
	Tags   []string
	Source string
}

// dataFile is the raw shape of a *.jdp-lang.json file.
type dataFile struct {
	Meta map[string]json.RawMessage `json:"meta"`
	Data []json.RawMessage          `json:"data"`
}

// ReadDataFile parses a data file and checks its header. All missing keys
// are reported together.
func ReadDataFile(filePath string) (schema.Meta, []json.RawMessage, error) {
	var meta schema.Meta

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return meta, nil, fmt.Errorf("failed to read data file: %w", err)
	}

	var df dataFile
	if err := json.Unmarshal(raw, &df); err != nil {
		return meta, nil, &schema.MalformedDataError{Path: filePath, Err: err}
	}
	if df.Meta == nil {
		return meta, nil, &schema.MalformedDataError{Path: filePath, Key: "meta"}
	}

	var errs []error
	for _, key := range requiredMetaKeys {
		if _, ok := df.Meta[key]; !ok {
			errs = append(errs, &schema.MalformedDataError{Path: filePath, Key: key})
		}
	}
	if len(errs) > 0 {
		return meta, nil, errors.Join(errs...)
	}

	fields := []struct {
		key  string
		dest any
	}{
		{"status", &meta.Status},
		{"format", &meta.Format},
		{"version", &meta.Version},
		{"tags", &meta.Tags},
	}
	for _, f := range fields {
		if err := json.Unmarshal(df.Meta[f.key], f.dest); err != nil {
			errs = append(errs, &schema.MalformedDataError{Path: filePath, Key: f.key, Err: err})
		}
	}
	if len(errs) > 0 {
		return meta, nil, errors.Join(errs...)
	}

	return meta, df.Data, nil
}

// ScanStats counts what a Scanner saw.
type ScanStats struct {
	Files     int
	Skipped   int
	Malformed int
	Items     int
	Records   int
	Discarded int
}

// Scanner walks the data files of a language and applies the filter.
// Malformed files are logged and skipped; only walk failures and fatal
// record errors stop the sequence.
type Scanner struct {
	Filter      Filter
	Translation string
	Logger      *slog.Logger
	Stats       ScanStats
}

// NewScanner creates a scanner.
func NewScanner(filter Filter, translation string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scanner{Filter: filter, Translation: translation, Logger: logger}
}

// Items yields every raw item from ready data files that pass the filter.
func (s *Scanner) Items(lang *schema.Language) iter.Seq2[RawItem, error] {
	return func(yield func(RawItem, error) bool) {
		if err := s.Filter.Validate(); err != nil {
			yield(RawItem{}, err)
			return
		}

		for filePath, err := range lang.DataFiles() {
			if err != nil {
				yield(RawItem{}, fmt.Errorf("failed to walk %s: %w", lang.Directory, err))
				return
			}
			s.Stats.Files++

			meta, items, err := ReadDataFile(filePath)
			if err != nil {
				s.Stats.Malformed++
				s.Logger.Warn("skipping data file", slog.String("path", filePath), slog.String("error", err.Error()))
				continue
			}

			if !meta.Ready() || !s.Filter.MatchFormat(meta.Format) || !s.Filter.MatchTags(meta.Tags) {
				s.Stats.Skipped++
				s.Logger.Debug("filtered data file",
					slog.String("path", filePath),
					slog.String("status", meta.Status),
					slog.String("format", meta.Format))
				continue
			}

			format := schema.Format{Name: meta.Format, Version: meta.Version}
			for _, data := range items {
				s.Stats.Items++
				item := RawItem{Data: data, Format: format, Tags: meta.Tags, Source: filePath}
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}
