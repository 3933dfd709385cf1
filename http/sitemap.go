package http

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/sitegraph"
)

// maxSitemapDepth bounds how deeply sitemap indexes may nest.
const maxSitemapDepth = 5

// Ensure SitemapService implements sitegraph.SitemapService.
var _ sitegraph.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from a site's sitemaps. Sitemaps are
// located through Sitemap: directives in robots.txt, falling back to
// /sitemap.xml.
type SitemapService struct {
	client    *http.Client
	userAgent string
	maxURLs   int
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithSitemapUserAgent sets the User-Agent header for sitemap requests.
func WithSitemapUserAgent(ua string) SitemapOption {
	return func(s *SitemapService) {
		s.userAgent = ua
	}
}

// WithMaxURLs stops discovery once n URLs have been collected.
// Zero means no limit.
func WithMaxURLs(n int) SitemapOption {
	return func(s *SitemapService) {
		s.maxURLs = n
	}
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client, opts ...SitemapOption) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	s := &SitemapService{client: client, userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiscoverURLs returns the distinct URLs listed in the sitemaps of baseURL's
// host, in sitemap order. It returns an empty slice if the site has no
// sitemap.
//
// When baseURL has a non-root path (e.g., https://example.com/docs), only
// URLs at or below that path are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, sitegraph.Errorf(sitegraph.EINVALID, "invalid base URL: %v", err)
	}
	pathPrefix := strings.TrimRight(base.Path, "/")

	root := &url.URL{Scheme: base.Scheme, Host: base.Host}
	sitemapURLs, err := s.locateSitemaps(ctx, root)
	if err != nil {
		return nil, err
	}

	c := &collector{
		seenSitemaps: make(map[string]bool),
		seenURLs:     make(map[string]bool),
		pathPrefix:   pathPrefix,
		limit:        s.maxURLs,
		urls:         []string{},
	}
	for _, sitemapURL := range sitemapURLs {
		if err := s.readSitemap(ctx, sitemapURL, 0, c); err != nil {
			return nil, err
		}
		if c.full() {
			break
		}
	}
	return c.urls, nil
}

// collector accumulates URLs across sitemaps.
type collector struct {
	seenSitemaps map[string]bool
	seenURLs     map[string]bool
	pathPrefix   string
	limit        int
	urls         []string
}

func (c *collector) add(raw string) {
	if c.full() || c.seenURLs[raw] || !underPath(raw, c.pathPrefix) {
		return
	}
	c.seenURLs[raw] = true
	c.urls = append(c.urls, raw)
}

func (c *collector) full() bool {
	return c.limit > 0 && len(c.urls) >= c.limit
}

// underPath reports whether rawURL's path equals prefix or lies below it.
// An empty prefix matches everything.
func underPath(rawURL, prefix string) bool {
	if prefix == "" {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.TrimRight(parsed.Path, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// locateSitemaps returns the sitemaps declared in robots.txt, or
// /sitemap.xml if it exists. Only cancellation is reported as an error.
func (s *SitemapService) locateSitemaps(ctx context.Context, root *url.URL) ([]string, error) {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"})
	if sitemaps, err := s.robotsSitemaps(ctx, robotsURL.String()); err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fallback := root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	exists, err := s.exists(ctx, fallback)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{fallback}, nil
	}
	return nil, nil
}

// robotsSitemaps extracts Sitemap: directives from robots.txt.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	const directive = "sitemap:"
	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < len(directive) || !strings.EqualFold(line[:len(directive)], directive) {
			continue
		}
		if loc := strings.TrimSpace(line[len(directive):]); loc != "" {
			sitemaps = append(sitemaps, loc)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// readSitemap fetches one sitemap and adds its URLs to c, descending into
// sitemap indexes up to maxSitemapDepth.
func (s *SitemapService) readSitemap(ctx context.Context, sitemapURL string, depth int, c *collector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.seenSitemaps[sitemapURL] || depth > maxSitemapDepth || c.full() {
		return nil
	}
	c.seenSitemaps[sitemapURL] = true

	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return err
	}
	defer body.Close()

	var r io.Reader = body
	if strings.HasSuffix(strings.ToLower(sitemapURL), ".gz") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return fmt.Errorf("decompressing sitemap %s: %w", sitemapURL, err)
		}
		defer gz.Close()
		r = gz
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return fmt.Errorf("parsing sitemap XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		for _, child := range locs(root, "sitemap") {
			if err := s.readSitemap(ctx, child, depth+1, c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, u := range locs(root, "url") {
		c.add(u)
	}
	return nil
}

// locs returns the trimmed <loc> text of every tag child of root.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// get fetches targetURL and returns the body of a 200 response.
func (s *SitemapService) get(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, targetURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return resp.Body, nil
}

// exists reports whether targetURL answers a HEAD request with 200 OK.
func (s *SitemapService) exists(ctx context.Context, targetURL string) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, targetURL)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (s *SitemapService) do(ctx context.Context, method, targetURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	return s.client.Do(req)
}
