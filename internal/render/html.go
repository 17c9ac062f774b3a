package render

import (
	"html/template"
	"io"
	"path"
	"strings"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="{{.Language.Code}}">
<head>
<meta charset="utf-8">
<title>{{.Language.Name}}: {{.Format}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: .4em .6em; vertical-align: top; text-align: left; }
th { background: #f4f4f4; }
.phrase { font-size: 1.4em; }
.tags { color: #888; font-size: .85em; }
img { max-height: 6em; }
</style>
</head>
<body>
<h1>{{.Language.Name}} <small>({{.Language.Code}})</small>: {{.Format}}</h1>
<p>{{len .Entries}} entries</p>
<table>
<thead>
<tr><th>Phrase</th><th>Transcription</th><th>Grammar</th><th>Translation</th><th>Media</th><th>Note</th><th>Tags</th></tr>
</thead>
<tbody>
{{- range .Entries}}
<tr>
<td class="phrase" lang="{{$.Language.Code}}">{{.Phrase}}</td>
<td>{{.Transcription}}</td>
<td>{{grammar .}}</td>
<td>{{join .Translation}}</td>
<td>
{{- range .Image}}<img src="{{media "image" .}}" alt="">{{end}}
{{- range .Audio}}<audio controls src="{{media "audio" .}}"></audio>{{end}}
{{- range .Video}}<video controls src="{{media "video" .}}"></video>{{end -}}
</td>
<td>{{join .Note}}</td>
<td class="tags">{{tags .Tags}}</td>
</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`

// HTMLRenderer writes a study page with one table row per entry. Media
// are referenced relative to the page, inside their category directory.
type HTMLRenderer struct {
	opts Options
	tpl  *template.Template
}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer(opts Options) *HTMLRenderer {
	funcs := template.FuncMap{
		"grammar": grammar,
		"join":    func(list []string) string { return strings.Join(list, opts.ListSeparator) },
		"tags":    func(list []string) string { return strings.Join(list, opts.TagSeparator) },
		"media":   func(kind, name string) string { return path.Join(kind, name) },
	}
	return &HTMLRenderer{
		opts: opts,
		tpl:  template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate)),
	}
}

// Extension implements Renderer.
func (r *HTMLRenderer) Extension() string { return "html" }

// Render implements Renderer.
func (r *HTMLRenderer) Render(w io.Writer, page Page) error {
	return r.tpl.Execute(w, page)
}

var _ Renderer = (*HTMLRenderer)(nil)
var _ Renderer = (*TextRenderer)(nil)
