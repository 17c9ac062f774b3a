package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jdp/internal/config"
	"jdp/internal/metrics"
	"jdp/internal/pipeline"
	"jdp/internal/ui"
	"jdp/internal/workspace"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var opts filterOptions
	var translation string
	var workers int
	var writeMetrics bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build export files for every ready language",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			opts.apply(flags, cfg)
			if flags.Changed("translation") {
				cfg.Translation = translation
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("metrics") {
				cfg.Metrics = writeMetrics
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			term, logger := ctx.terminal(cfg)
			term.Banner()
			term.Config(configRows(cfg))

			unlock, err := workspace.Lock(cfg.LockFile)
			if err != nil {
				return err
			}
			defer unlock()

			if err := workspace.CreateDirectories(logger, cfg.OutDir, cfg.TmpDir); err != nil {
				return err
			}

			collector := metrics.NewCollector()
			collector.SetConfigMap(map[string]any{
				"language":    cfg.Language,
				"format":      cfg.Format,
				"tag":         cfg.Tag,
				"translation": cfg.Translation,
				"workers":     cfg.Workers,
				"outputs":     cfg.Export.Outputs,
			})

			b, err := pipeline.New(cfg, logger, collector)
			if err != nil {
				return err
			}

			term.Phase(1, 2, "Discovering languages")
			languages, err := b.Discover()
			if err != nil {
				return err
			}
			term.Debug(fmt.Sprintf("%d languages, %d workers", len(languages), cfg.EffectiveWorkers(len(languages))))

			term.Phase(2, 2, "Building")
			start := time.Now()
			out := cmd.OutOrStdout()
			spinner := term.Spinner("Building languages...")

			var entries, files int
			_, err = b.Run(cmd.Context(), languages, func(r *pipeline.LanguageResult) {
				entries += r.Entries
				files += len(r.Files)
				printLanguage(out, r.Language.Code, r.Language.Name, r.Language.Directory)
				for _, f := range r.Files {
					printItem(out, f)
				}
				if cfg.Verbose {
					term.LanguageStatus(r.Language.Code, "ok",
						fmt.Sprintf("%d entries from %d records", r.Entries, r.Scan.Records))
					term.FormatStats(r.ByFormat, r.Formats)
				}
			})
			term.StopSpinner(spinner)
			if err != nil {
				reportFailure(term, err)
				return err
			}

			stats := &b.Media.Stats
			term.FinalReport(ui.Report{
				Languages:    len(languages),
				Entries:      entries,
				FilesWritten: files,
				MediaCopied:  stats.Copied.Load(),
				MediaReused:  stats.Reused.Load(),
				MediaBytes:   stats.Bytes.Load(),
				Duration:     time.Since(start),
			})

			if cfg.Metrics {
				collector.SetCounter(metrics.StageMedia, "copied", stats.Copied.Load())
				collector.SetCounter(metrics.StageMedia, "reused", stats.Reused.Load())
				collector.SetCounter(metrics.StageMedia, "bytes", stats.Bytes.Load())
				writeRunMetrics(term, cfg, collector.Finalize(int64(entries), files))
			}
			term.Done()
			return nil
		},
	}

	bindFilterFlags(cmd.Flags(), &opts)
	cmd.Flags().StringVar(&translation, "translation", "en", "Translation language code")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of parallel workers (0 = auto)")
	cmd.Flags().BoolVar(&writeMetrics, "metrics", true, "Write metrics to the output directory")
	return cmd
}

// reportFailure prints the error that stopped a build, attributed to its
// language when known.
func reportFailure(term *ui.UI, err error) {
	if errors.Is(err, context.Canceled) {
		term.Warning("build cancelled")
		return
	}
	var langErr *pipeline.LanguageError
	if errors.As(err, &langErr) {
		term.LanguageStatus(langErr.Code, "error", langErr.Err.Error())
		return
	}
	term.Error(err.Error())
}

// writeRunMetrics stores the run and prints the comparison with the previous
// one. Failures are reported but never fail the build.
func writeRunMetrics(term *ui.UI, cfg *config.Config, run *metrics.RunMetrics) {
	reporter := metrics.NewReporter(cfg.OutDir)
	previous, err := reporter.LastRun()
	if err != nil {
		term.Warning(fmt.Sprintf("failed to read metrics history: %v", err))
	}
	if err := reporter.Write(run); err != nil {
		term.Warning(fmt.Sprintf("failed to write metrics: %v", err))
		return
	}
	term.Info(metrics.FormatComparison(metrics.CompareRuns(run, previous)))
	term.Debug(fmt.Sprintf("metrics written to %s", reporter.Dir()))
}

func configRows(cfg *config.Config) [][]string {
	source := cfg.Path
	if source == "" {
		source = "(defaults)"
	}
	return [][]string{
		{"Config", source},
		{"Source", cfg.SrcDir},
		{"Output", cfg.OutDir},
		{"Language", cfg.Language},
		{"Format", cfg.Format},
		{"Tag", cfg.Tag},
		{"Translation", cfg.Translation},
		{"Outputs", strings.Join(cfg.Export.Outputs, ", ")},
	}
}
