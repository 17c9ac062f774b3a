// Package ingest discovers languages and reads their data files into
// normalized records.
package ingest

import (
	"iter"
	"log/slog"

	"jdp/internal/schema"
)

// DefaultTranslation is the translation language used when none is given.
const DefaultTranslation = "en"

// Records yields every normalized record of the language. Records that
// normalization discards are counted and dropped; malformed records are
// logged and skipped. Fatal errors (unsupported format, missing media)
// are yielded and end the sequence.
func (s *Scanner) Records(lang *schema.Language) iter.Seq2[schema.Record, error] {
	return func(yield func(schema.Record, error) bool) {
		translation := s.Translation
		if translation == "" {
			translation = DefaultTranslation
		}

		for item, err := range s.Items(lang) {
			if err != nil {
				yield(nil, err)
				return
			}

			rec, err := Normalize(item, translation)
			switch {
			case err != nil && schema.IsFatal(err):
				yield(nil, err)
				return
			case err != nil:
				s.Stats.Malformed++
				s.Logger.Warn("skipping record", slog.String("path", item.Source), slog.String("error", err.Error()))
				continue
			case rec == nil:
				s.Stats.Discarded++
				continue
			}

			s.Stats.Records++
			if !yield(rec, nil) {
				return
			}
		}
	}
}
