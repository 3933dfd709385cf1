package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/sitegraph"
	"github.com/fwojciec/sitegraph/etree"
	"github.com/fwojciec/sitegraph/fs"
	"github.com/fwojciec/sitegraph/htmltomarkdown"
	"github.com/fwojciec/sitegraph/report"
	sgslog "github.com/fwojciec/sitegraph/slog"
	"github.com/fwojciec/sitegraph/sqlite"
)

// DBName is the file name of the crawl history database in the output
// directory. Every sqlite export appends a crawl to it.
const DBName = "sitegraph.db"

// namedExporter is an exporter along with the format and file it writes.
type namedExporter struct {
	sitegraph.Exporter
	format string
	path   string
}

// fileExtensions maps file-based formats to their file name suffix.
var fileExtensions = map[string]string{
	FormatJSON:     ".json",
	FormatCSV:      ".csv",
	FormatHTML:     ".html",
	FormatMarkdown: ".md",
	FormatSitemap:  ".sitemap.xml",
}

// writerExporters constructs the writer-based exporter for each format.
var writerExporters = map[string]func(w io.Writer) sitegraph.Exporter{
	FormatText:     func(w io.Writer) sitegraph.Exporter { return report.NewTextExporter(w) },
	FormatJSON:     func(w io.Writer) sitegraph.Exporter { return report.NewJSONExporter(w) },
	FormatCSV:      func(w io.Writer) sitegraph.Exporter { return report.NewCSVExporter(w) },
	FormatHTML:     func(w io.Writer) sitegraph.Exporter { return report.NewHTMLExporter(w) },
	FormatMarkdown: func(w io.Writer) sitegraph.Exporter { return htmltomarkdown.NewExporter(w) },
	FormatSitemap:  func(w io.Writer) sitegraph.Exporter { return etree.NewSitemapExporter(w) },
}

// exporters builds one exporter per requested format. Text goes to stdout,
// sqlite to the history database, everything else to
// <output>/<host><extension>. Repeated formats are exported once.
func (m *Main) exporters(cli *CLI, seed string, deps *Dependencies) ([]namedExporter, error) {
	name := fs.ReportName(seed)
	seen := make(map[string]bool)

	var out []namedExporter
	for _, format := range cli.Formats() {
		if seen[format] {
			continue
		}
		seen[format] = true

		var e namedExporter
		switch format {
		case FormatText:
			e = namedExporter{Exporter: writerExporters[format](deps.Stdout), format: format}
		case FormatSQLite:
			path := filepath.Join(cli.Output, DBName)
			if m.DB == nil {
				if err := os.MkdirAll(cli.Output, 0755); err != nil {
					return nil, err
				}
				m.DB = sqlite.NewDB(path)
				if err := m.DB.Open(); err != nil {
					m.DB = nil
					return nil, err
				}
			}
			e = namedExporter{Exporter: sqlite.NewCrawlService(m.DB), format: format, path: path}
		default:
			path := filepath.Join(cli.Output, name+fileExtensions[format])
			e = namedExporter{Exporter: fs.NewFileExporter(path, writerExporters[format]), format: format, path: path}
		}
		e.Exporter = sgslog.NewLoggingExporter(e.Exporter, format, deps.Logger)
		out = append(out, e)
	}
	return out, nil
}
