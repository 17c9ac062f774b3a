package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jdp/internal/render"
	"jdp/internal/schema"
)

func testAggregate(t *testing.T) (*schema.Language, *schema.Aggregate) {
	t.Helper()
	agg, err := Aggregate("fr", records(
		vocab("chat", "noun", "cat"),
		vocab("chat", "noun", "tomcat"),
		writing("é", "e", ""),
		text("Le {{c1::chat}}.", "n"),
	))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	return &schema.Language{Name: "French", Code: "fr"}, agg
}

func TestExporterWritesFiles(t *testing.T) {
	tmpDir := t.TempDir()
	lang, agg := testAggregate(t)

	opts := render.DefaultOptions()
	exporter := NewExporter(tmpDir, render.NewTextRenderer(opts), render.NewHTMLRenderer(opts))

	files, err := exporter.Export(context.Background(), lang, agg)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var want []string
	for _, name := range []string{
		"fr-vocabulary.txt", "fr-vocabulary.html",
		"fr-writing.txt", "fr-writing.html",
		"fr-text.txt", "fr-text.html",
	} {
		want = append(want, filepath.Join(tmpDir, name))
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "fr-vocabulary.txt"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "chat\t\tnoun\tcat; tomcat\t") {
		t.Errorf("unexpected vocabulary row: %q", data)
	}
	if strings.Count(string(data), "\n") != 1 {
		t.Errorf("expected a single row, got %q", data)
	}
}

func TestExporterSequential(t *testing.T) {
	tmpDir := t.TempDir()
	lang, agg := testAggregate(t)

	exporter := NewExporter(tmpDir, render.NewTextRenderer(render.DefaultOptions()))
	exporter.Config.Workers = 0

	files, err := exporter.Export(context.Background(), lang, agg)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("files = %d, want 3", len(files))
	}
}

func TestExporterCancelled(t *testing.T) {
	tmpDir := t.TempDir()
	lang, agg := testAggregate(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exporter := NewExporter(tmpDir, render.NewTextRenderer(render.DefaultOptions()))
	_, err := exporter.Export(ctx, lang, agg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExporterEmptyAggregate(t *testing.T) {
	tmpDir := t.TempDir()
	exporter := NewExporter(tmpDir, render.NewTextRenderer(render.DefaultOptions()))

	files, err := exporter.Export(context.Background(), &schema.Language{Code: "xx"}, schema.NewAggregate("xx"))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v, want none", files)
	}
}
