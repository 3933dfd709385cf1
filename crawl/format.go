package crawl

import (
	"fmt"
	"time"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		// Too short for "..." prefix, just return dots
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatSummary renders a one-line summary of a crawl result.
func FormatSummary(r *Result) string {
	if r == nil {
		return "no pages crawled"
	}
	return fmt.Sprintf("%d pages fetched, %d skipped, %d failed, %d URLs visited, %d edges in %s",
		r.Fetched, r.Skipped, r.Failed, r.Visited, r.Edges, FormatDuration(r.Duration))
}

// FormatDuration rounds d for display: milliseconds below one second,
// tenths of a second above.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
