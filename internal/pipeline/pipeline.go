// Package pipeline runs discovery, filtering, normalization, aggregation,
// media export and rendering for every selected language.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"jdp/internal/builder"
	"jdp/internal/config"
	"jdp/internal/ingest"
	"jdp/internal/media"
	"jdp/internal/metrics"
	"jdp/internal/render"
	"jdp/internal/schema"
)

// LanguageResult holds the result for a single language.
type LanguageResult struct {
	Language *schema.Language
	Files    []string
	Entries  int
	ByFormat map[string]int
	Formats  []string
	Scan     ingest.ScanStats
}

// LanguageError reports the language a build failure belongs to.
type LanguageError struct {
	Code string
	Err  error
}

func (e *LanguageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *LanguageError) Unwrap() error { return e.Err }

// ProgressCallback is called for every completed language, in discovery
// order.
type ProgressCallback func(result *LanguageResult)

// Builder builds export files from a source tree.
type Builder struct {
	Config    *config.Config
	Logger    *slog.Logger
	Collector *metrics.Collector
	Media     *media.Exporter

	renderers []render.Renderer
}

// New creates a Builder. collector may be nil.
func New(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) (*Builder, error) {
	renderers, err := cfg.Renderers()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{
		Config:    cfg,
		Logger:    logger,
		Collector: collector,
		Media:     media.NewExporter(cfg.OutDir),
		renderers: renderers,
	}, nil
}

// Filter returns the record filter of the configuration.
func (b *Builder) Filter() ingest.Filter {
	return ingest.Filter{Format: b.Config.Format, Tag: b.Config.Tag}
}

// Discover returns every ready language matching the configured pattern.
// A malformed manifest stops discovery.
func (b *Builder) Discover() ([]*schema.Language, error) {
	b.startStage(metrics.StageDiscover)
	defer b.endStage(metrics.StageDiscover)

	var languages []*schema.Language
	for lang, err := range ingest.DiscoverLanguages(b.Config.SrcDir, b.Config.Language) {
		if err != nil {
			return nil, err
		}
		languages = append(languages, lang)
	}
	b.addCounter(metrics.StageDiscover, "languages", int64(len(languages)))
	return languages, nil
}

// Run builds every language. With more than one worker languages are built
// concurrently; the first error cancels the remaining work and is returned.
// Results and callbacks follow the order of languages.
func (b *Builder) Run(ctx context.Context, languages []*schema.Language, callback ProgressCallback) ([]*LanguageResult, error) {
	results := make([]*LanguageResult, len(languages))
	workers := b.Config.EffectiveWorkers(len(languages))

	if workers <= 1 {
		// Sequential processing
		for i, lang := range languages {
			result, err := b.BuildLanguage(ctx, lang)
			if err != nil {
				return results[:i], err
			}
			results[i] = result
			if callback != nil {
				callback(result)
			}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	done := make([]chan struct{}, len(languages))
	for i := range done {
		done[i] = make(chan struct{})
	}

	go func() {
		for i, lang := range languages {
			g.Go(func() error {
				defer close(done[i])
				if err := gctx.Err(); err != nil {
					return err
				}
				result, err := b.BuildLanguage(gctx, lang)
				if err != nil {
					return err
				}
				results[i] = result
				return nil
			})
		}
	}()

	// Report in order as results become available; stop at the first gap.
	reported := 0
	for i := range languages {
		<-done[i]
		if results[i] == nil {
			break
		}
		if callback != nil {
			callback(results[i])
		}
		reported++
	}
	for i := reported; i < len(languages); i++ {
		<-done[i]
	}

	if err := g.Wait(); err != nil {
		return results[:reported], err
	}
	return results, nil
}

// BuildLanguage runs every stage for one language.
func (b *Builder) BuildLanguage(ctx context.Context, lang *schema.Language) (*LanguageResult, error) {
	logger := b.Logger.With(slog.String("language", lang.Code))
	scanner := ingest.NewScanner(b.Filter(), b.Config.Translation, logger)

	b.startStage(metrics.StageIngest)
	aggregator := builder.NewAggregator(lang.Code)
	for rec, err := range withContext(ctx, scanner.Records(lang)) {
		if err != nil {
			b.endStage(metrics.StageIngest)
			return nil, &LanguageError{Code: lang.Code, Err: err}
		}
		aggregator.Add(rec)
	}
	agg := aggregator.Aggregate()
	stats := aggregator.Stats()
	b.endStage(metrics.StageIngest)
	b.addCounter(metrics.StageIngest, "files", int64(scanner.Stats.Files))
	b.addCounter(metrics.StageIngest, "files_skipped", int64(scanner.Stats.Skipped))
	b.addCounter(metrics.StageIngest, "malformed", int64(scanner.Stats.Malformed))
	b.addCounter(metrics.StageIngest, "records", int64(scanner.Stats.Records))
	b.addCounter(metrics.StageIngest, "discarded", int64(scanner.Stats.Discarded))
	b.addCounter(metrics.StageIngest, "entries", int64(stats.Entries))

	logger.Debug("aggregated",
		slog.Int("records", stats.Records),
		slog.Int("entries", stats.Entries))

	if b.Config.TmpDir != "" {
		dump := filepath.Join(b.Config.TmpDir, lang.Code+".json")
		if err := agg.Save(dump); err != nil {
			return nil, &LanguageError{Code: lang.Code, Err: fmt.Errorf("failed to save aggregate: %w", err)}
		}
	}

	b.startStage(metrics.StageMedia)
	err := b.Media.ExportAggregate(agg)
	b.endStage(metrics.StageMedia)
	if err != nil {
		return nil, &LanguageError{Code: lang.Code, Err: err}
	}

	b.startStage(metrics.StageExport)
	exporter := builder.NewExporter(b.Config.OutDir, b.renderers...)
	files, err := exporter.Export(ctx, lang, agg)
	b.endStage(metrics.StageExport)
	if err != nil {
		return nil, &LanguageError{Code: lang.Code, Err: err}
	}
	b.addCounter(metrics.StageExport, "files", int64(len(files)))

	return &LanguageResult{
		Language: lang,
		Files:    files,
		Entries:  stats.Entries,
		ByFormat: stats.ByFormat,
		Formats:  agg.Formats(),
		Scan:     scanner.Stats,
	}, nil
}

// withContext stops seq with ctx.Err() once ctx is done.
func withContext[T any](ctx context.Context, seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			if ctxErr := ctx.Err(); ctxErr != nil {
				var zero T
				yield(zero, ctxErr)
				return
			}
			if !yield(v, err) {
				return
			}
		}
	}
}

func (b *Builder) startStage(name string) {
	if b.Collector != nil {
		b.Collector.StartStage(name)
	}
}

func (b *Builder) endStage(name string) {
	if b.Collector != nil {
		b.Collector.EndStage(name)
	}
}

func (b *Builder) addCounter(stage, name string, delta int64) {
	if b.Collector != nil {
		b.Collector.AddCounter(stage, name, delta)
	}
}
