// Package etree writes crawl results as sitemaps.org XML documents.
package etree

import (
	"context"
	"io"

	"github.com/beevik/etree"
	"github.com/fwojciec/sitegraph"
)

// SitemapNamespace is the sitemaps.org 0.9 schema namespace.
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Ensure SitemapExporter implements sitegraph.Exporter at compile time.
var _ sitegraph.Exporter = (*SitemapExporter)(nil)

// SitemapExporter writes every page of the crawled graph, seed included, as
// a <urlset> sitemap.
type SitemapExporter struct {
	w io.Writer
}

// NewSitemapExporter creates a SitemapExporter writing to w.
func NewSitemapExporter(w io.Writer) *SitemapExporter {
	return &SitemapExporter{w: w}
}

// Export writes the sitemap. URLs are sorted; lastmod is the crawl's
// finish date when known.
func (e *SitemapExporter) Export(_ context.Context, r *sitegraph.Report) error {
	doc := BuildSitemap(r)
	doc.Indent(2)
	_, err := doc.WriteTo(e.w)
	return err
}

// BuildSitemap builds the sitemap document for r.
func BuildSitemap(r *sitegraph.Report) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	urlset := doc.CreateElement("urlset")
	urlset.CreateAttr("xmlns", SitemapNamespace)

	var lastmod string
	if !r.FinishedAt.IsZero() {
		lastmod = r.FinishedAt.UTC().Format("2006-01-02")
	}

	for _, page := range pages(r) {
		u := urlset.CreateElement("url")
		u.CreateElement("loc").SetText(page)
		if lastmod != "" {
			u.CreateElement("lastmod").SetText(lastmod)
		}
	}
	return doc
}

// pages returns the seed and every page in the graph, sorted and distinct.
func pages(r *sitegraph.Report) []string {
	edges := r.Edges
	if r.Seed != "" {
		edges = append([]sitegraph.Edge{{Source: r.Seed, Target: r.Seed}}, r.Edges...)
	}
	return sitegraph.Pages(edges)
}
