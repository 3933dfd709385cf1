package sitegraph

import (
	"context"
	"mime"
	"strings"
)

// Response is the outcome of fetching a single page.
type Response struct {
	// URL is the final URL after redirects. Relative links on the page
	// resolve against it.
	URL string

	StatusCode  int
	ContentType string
	Body        string
}

// OK reports whether the response has a 2xx status code.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsHTML reports whether the declared content type is text/html.
func (r *Response) IsHTML() bool {
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(r.ContentType)), "text/html")
	}
	return mediaType == "text/html"
}

// Fetcher retrieves pages over the network.
type Fetcher interface {
	// Fetch retrieves the page at url. Non-2xx responses are returned as a
	// Response, not an error; errors are reserved for transport failures,
	// timeouts and cancellation. The context controls cancellation.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// LinkExtractor pulls raw href values out of an HTML document.
type LinkExtractor interface {
	// ExtractLinks returns the raw, unresolved hrefs in document order.
	// The result may be empty.
	ExtractLinks(html string) ([]string, error)
}
