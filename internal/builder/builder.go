// Package builder merges records into the aggregate and writes export files.
package builder

import (
	"iter"

	"jdp/internal/schema"
)

// BuildStats holds statistics from an aggregation.
type BuildStats struct {
	Records  int
	Entries  int
	ByFormat map[string]int
}

// NewBuildStats creates a new BuildStats.
func NewBuildStats() *BuildStats {
	return &BuildStats{ByFormat: make(map[string]int)}
}

// Aggregator folds records into an aggregate keyed by format, phrase and
// sub-key. Multi-valued fields are merged as ordered sets.
type Aggregator struct {
	agg   *schema.Aggregate
	stats *BuildStats
}

// NewAggregator creates an aggregator for a language code.
func NewAggregator(language string) *Aggregator {
	return &Aggregator{
		agg:   schema.NewAggregate(language),
		stats: NewBuildStats(),
	}
}

// SubKey returns the secondary grouping key of a record.
func SubKey(rec schema.Record) string {
	switch r := rec.(type) {
	case *schema.VocabularyRecord:
		return r.Category.Lexical
	case *schema.WritingRecord:
		return r.Transcription
	}
	return schema.NoSubKey
}

// Add merges one record.
func (a *Aggregator) Add(rec schema.Record) {
	base := rec.Base()
	entry, created := a.agg.Upsert(base.Format.Name, base.Phrase, SubKey(rec))
	a.stats.Records++
	if created {
		a.stats.Entries++
		a.stats.ByFormat[base.Format.Name]++
	}

	switch r := rec.(type) {
	case *schema.VocabularyRecord:
		if created {
			entry.Transcription = r.Transcription
			entry.Grammar = r.Category.Lexical
		}
		entry.Translation = schema.AppendUnique(entry.Translation, r.Translation...)
		// Vocabulary media accumulate across records into the entry lists.
		for _, kind := range schema.MediaKinds {
			list := entry.Media(kind)
			*list = schema.AppendUnique(*list, r.Media(kind))
		}
	case *schema.WritingRecord:
		if created {
			entry.Transcription = r.Transcription
			entry.IPA = r.IPA
		}
		appendSingletonMedia(entry, &r.Common)
	case *schema.TextRecord:
		if created {
			entry.Transcription = r.Transcription
		}
		appendSingletonMedia(entry, &r.Common)
	}

	entry.Note = schema.AppendUnique(entry.Note, base.Note...)
	entry.Tags = schema.AppendUnique(entry.Tags, base.Tags...)
}

// appendSingletonMedia contributes the record's single media reference per
// kind, as writing and text records carry at most one each.
func appendSingletonMedia(entry *schema.Entry, c *schema.Common) {
	entry.Image = schema.AppendUnique(entry.Image, c.Image)
	entry.Audio = schema.AppendUnique(entry.Audio, c.Audio)
	entry.Video = schema.AppendUnique(entry.Video, c.Video)
}

// Aggregate returns the aggregate built so far.
func (a *Aggregator) Aggregate() *schema.Aggregate {
	return a.agg
}

// Stats returns aggregation statistics.
func (a *Aggregator) Stats() *BuildStats {
	return a.stats
}

// Aggregate folds a record stream into an aggregate. The first error in the
// stream stops the fold and is returned.
func Aggregate(language string, records iter.Seq2[schema.Record, error]) (*schema.Aggregate, error) {
	a := NewAggregator(language)
	for rec, err := range records {
		if err != nil {
			return nil, err
		}
		a.Add(rec)
	}
	return a.Aggregate(), nil
}
