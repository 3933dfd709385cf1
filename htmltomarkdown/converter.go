// Package htmltomarkdown renders crawl reports as Markdown by converting
// their HTML rendering.
package htmltomarkdown

import (
	"context"
	"io"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/sitegraph"
	"github.com/fwojciec/sitegraph/report"
)

// Ensure Exporter implements sitegraph.Exporter at compile time.
var _ sitegraph.Exporter = (*Exporter)(nil)

// Exporter writes a Markdown version of the HTML report.
type Exporter struct {
	w    io.Writer
	conv *converter.Converter
}

// NewExporter creates an Exporter writing to w.
func NewExporter(w io.Writer) *Exporter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Exporter{w: w, conv: conv}
}

// Export renders r to HTML and writes its Markdown conversion.
func (e *Exporter) Export(_ context.Context, r *sitegraph.Report) error {
	html, err := report.RenderHTML(r)
	if err != nil {
		return err
	}
	md, err := e.conv.ConvertString(string(html))
	if err != nil {
		return sitegraph.Errorf(sitegraph.EINTERNAL, "convert report to markdown: %v", err)
	}
	_, err = io.WriteString(e.w, md+"\n")
	return err
}
