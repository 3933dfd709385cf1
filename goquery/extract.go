// Package goquery implements link extraction over HTML documents.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitegraph"
)

// Compile-time interface verification.
var _ sitegraph.LinkExtractor = (*LinkExtractor)(nil)

// linkSelector matches every element whose href navigates to another page.
const linkSelector = "a[href], area[href]"

// LinkExtractor extracts raw hrefs from HTML documents in document order.
// Filtering, resolution and normalization are left to the caller.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks returns the href of every anchor and image-map area in html.
// If the document declares an absolute <base href>, relative paths are
// resolved against it so the caller's page URL does not apply to them.
func (e *LinkExtractor) ExtractLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitegraph.Errorf(sitegraph.EINVALID, "failed to parse HTML: %v", err)
	}

	base := documentBase(doc)

	var links []string
	doc.Find(linkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if base != nil {
			href = rebase(base, href)
		}
		links = append(links, href)
	})
	return links, nil
}

// documentBase returns the document's <base href> if it is an absolute
// http(s) URL.
func documentBase(doc *goquery.Document) *url.URL {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	return u
}

// rebase resolves a relative href against base. Absolute URLs, bare
// fragments and unparseable hrefs are returned unchanged.
func rebase(base *url.URL, href string) string {
	if strings.HasPrefix(href, "#") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	return base.ResolveReference(ref).String()
}
