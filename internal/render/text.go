package render

import (
	"bufio"
	"io"
	"strings"

	"jdp/internal/normalizer"
	"jdp/internal/schema"
)

// TextRenderer writes tab-separated rows, one entry per line, in the
// column order phrase, transcription, grammar, translation, image, audio,
// video, note, tags.
type TextRenderer struct {
	opts Options
}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer(opts Options) *TextRenderer {
	return &TextRenderer{opts: opts}
}

// Extension implements Renderer.
func (r *TextRenderer) Extension() string { return "txt" }

// Render implements Renderer.
func (r *TextRenderer) Render(w io.Writer, page Page) error {
	bw := bufio.NewWriter(w)
	for _, e := range page.Entries {
		if _, err := bw.WriteString(r.Row(e)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Row formats one entry as a newline-terminated line.
func (r *TextRenderer) Row(e *schema.Entry) string {
	cells := []string{
		e.Phrase,
		e.Transcription,
		grammar(e),
		strings.Join(e.Translation, r.opts.ListSeparator),
		r.opts.MediaCell(schema.MediaImage, e.Image),
		r.opts.MediaCell(schema.MediaAudio, e.Audio),
		r.opts.MediaCell(schema.MediaVideo, e.Video),
		strings.Join(e.Note, r.opts.ListSeparator),
		strings.Join(e.Tags, r.opts.TagSeparator),
	}
	for i, c := range cells {
		cells[i] = normalizer.Sanitize(c)
	}
	return strings.Join(cells, "\t") + "\n"
}
