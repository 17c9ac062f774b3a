// Package media resolves media references and exports them under
// content-addressed names.
package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"jdp/internal/schema"
)

// DefaultChunkSize bounds the buffer used while hashing and copying.
const DefaultChunkSize = 64 * 1024

// Resolve maps a media field to an absolute path. Relative names are looked
// up in baseDir, the directory of the data file that references them.
// An empty field stays empty.
func Resolve(baseDir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, name)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		dir, _ := filepath.Abs(baseDir)
		return "", &schema.MediaNotFoundError{Dir: dir, Name: name}
	}

	return filepath.Abs(path)
}

// ExportStats counts exporter activity. Safe for concurrent use.
type ExportStats struct {
	Copied atomic.Int64
	Reused atomic.Int64
	Bytes  atomic.Int64
}

// Exporter copies media files into <OutputDir>/<kind>/<hash><ext>.
type Exporter struct {
	OutputDir string
	ChunkSize int
	Stats     ExportStats
}

// NewExporter creates an exporter writing below outputDir.
func NewExporter(outputDir string) *Exporter {
	return &Exporter{
		OutputDir: outputDir,
		ChunkSize: DefaultChunkSize,
	}
}

// Hash returns the hex SHA-256 of the file contents, read in bounded chunks.
func (e *Exporter) Hash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, file, make([]byte, e.chunkSize())); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Export copies src to its content-addressed location unless a file with
// that name already exists, and returns the destination path.
func (e *Exporter) Export(src string, kind schema.MediaKind) (string, error) {
	sum, err := e.Hash(src)
	if err != nil {
		return "", err
	}

	destDir := filepath.Join(e.OutputDir, string(kind))
	dest := filepath.Join(destDir, sum+filepath.Ext(src))

	if _, err := os.Stat(dest); err == nil {
		e.Stats.Reused.Add(1)
		return dest, nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}

	written, err := e.copyAtomic(src, dest)
	if err != nil {
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	e.Stats.Copied.Add(1)
	e.Stats.Bytes.Add(written)
	return dest, nil
}

// ExportAggregate exports every media reference of the aggregate and
// replaces it with the exported file name. Lists are de-duplicated again
// afterwards, since different sources may share contents.
func (e *Exporter) ExportAggregate(agg *schema.Aggregate) error {
	for _, entry := range agg.All() {
		for _, kind := range schema.MediaKinds {
			list := entry.Media(kind)
			var exported []string
			for _, src := range *list {
				dest, err := e.Export(src, kind)
				if err != nil {
					return err
				}
				exported = schema.AppendUnique(exported, filepath.Base(dest))
			}
			*list = exported
		}
	}
	return nil
}

// copyAtomic streams src into a temporary file next to dest and renames it
// into place, so concurrent exports of the same content never observe a
// partial file.
func (e *Exporter) copyAtomic(src, dest string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".media-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	written, err := io.CopyBuffer(tmp, in, make([]byte, e.chunkSize()))
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, err
	}
	return written, os.Rename(tmp.Name(), dest)
}

func (e *Exporter) chunkSize() int {
	if e.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return e.ChunkSize
}
