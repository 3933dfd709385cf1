package report

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"time"

	"github.com/fwojciec/sitegraph"
)

// Ensure HTMLExporter implements sitegraph.Exporter at compile time.
var _ sitegraph.Exporter = (*HTMLExporter)(nil)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Site graph of {{.Seed}}</title>
</head>
<body>
<h1>Site graph of <a href="{{.Seed}}">{{.Seed}}</a></h1>
<table>
<tr><th>Pages fetched</th><td>{{.Fetched}}</td></tr>
<tr><th>Skipped</th><td>{{.Skipped}}</td></tr>
<tr><th>Failed</th><td>{{.Failed}}</td></tr>
<tr><th>URLs visited</th><td>{{.Visited}}</td></tr>
<tr><th>Links</th><td>{{.EdgeCount}}</td></tr>
<tr><th>Duration</th><td>{{.Duration}}</td></tr>
</table>
{{- if .Canceled}}
<p><strong>The crawl was canceled before it finished.</strong></p>
{{- end}}
{{- range .Groups}}
<h2><a href="{{.Source}}">{{.Source}}</a></h2>
<ul>
{{- range .Targets}}
<li><a href="{{.}}">{{.}}</a></li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`))

// HTMLExporter writes a standalone HTML page listing every page's links.
type HTMLExporter struct {
	w io.Writer
}

// NewHTMLExporter creates an HTMLExporter writing to w.
func NewHTMLExporter(w io.Writer) *HTMLExporter {
	return &HTMLExporter{w: w}
}

// Export renders r.
func (e *HTMLExporter) Export(_ context.Context, r *sitegraph.Report) error {
	body, err := RenderHTML(r)
	if err != nil {
		return err
	}
	_, err = e.w.Write(body)
	return err
}

// RenderHTML renders r as an HTML document.
func RenderHTML(r *sitegraph.Report) ([]byte, error) {
	edges := sortedEdges(r)
	data := struct {
		*sitegraph.Report
		EdgeCount int
		Duration  time.Duration
		Groups    []sitegraph.EdgeGroup
	}{
		Report:    r,
		EdgeCount: len(edges),
		Duration:  r.Duration().Round(time.Millisecond),
		Groups:    sitegraph.GroupEdges(edges),
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
