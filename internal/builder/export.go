package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"jdp/internal/render"
	"jdp/internal/schema"
)

// ExportConfig configures export file writing.
type ExportConfig struct {
	Workers int // Number of parallel workers for file writing
}

// DefaultExportConfig returns sensible defaults.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Workers: 4,
	}
}

// Exporter writes one file per format and renderer for a language.
type Exporter struct {
	OutputDir string
	Renderers []render.Renderer
	Config    ExportConfig
}

// NewExporter creates an exporter writing into outputDir.
func NewExporter(outputDir string, renderers ...render.Renderer) *Exporter {
	return &Exporter{
		OutputDir: outputDir,
		Renderers: renderers,
		Config:    DefaultExportConfig(),
	}
}

// FileName returns the export file name for a language, format and extension.
func FileName(code, format, ext string) string {
	return fmt.Sprintf("%s-%s.%s", code, format, ext)
}

// writeJob represents a file write job.
type writeJob struct {
	index    int
	filePath string
	renderer render.Renderer
	page     render.Page
}

// Export renders every format group of agg. Returned paths follow format
// order, then renderer order, regardless of which worker wrote them.
func (e *Exporter) Export(ctx context.Context, lang *schema.Language, agg *schema.Aggregate) ([]string, error) {
	// Check for cancellation before starting
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var jobs []writeJob
	for _, format := range agg.Formats() {
		page := render.Page{Language: *lang, Format: format, Entries: agg.Entries(format)}
		for _, r := range e.Renderers {
			jobs = append(jobs, writeJob{
				index:    len(jobs),
				filePath: filepath.Join(e.OutputDir, FileName(lang.Code, format, r.Extension())),
				renderer: r,
				page:     page,
			})
		}
	}

	written := make([]string, len(jobs))
	errs := make([]error, len(jobs))

	workers := e.Config.Workers
	if workers < 1 {
		workers = 1
	}

	jobsChan := make(chan writeJob)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobsChan {
				if err := writeFile(job); err != nil {
					errs[job.index] = err
					continue
				}
				written[job.index] = job.filePath
			}
		}()
	}

	// Send jobs (check context between sends)
	var cancelled error
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
		case jobsChan <- job:
			continue
		}
		break
	}
	close(jobsChan)
	wg.Wait()

	if cancelled != nil {
		return nil, cancelled
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return written, nil
}

func writeFile(job writeJob) error {
	f, err := os.Create(job.filePath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", job.filePath, err)
	}
	if err := job.renderer.Render(f, job.page); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s: %w", job.filePath, err)
	}
	return f.Close()
}
