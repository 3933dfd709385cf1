// Package fs writes exports to files on disk.
package fs

import (
	"bufio"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/sitegraph"
)

// ReportName derives a file name stem from a seed URL's host.
// Example: https://docs.example.com:8080/guide → docs.example.com_8080
func ReportName(seed string) string {
	u, err := url.Parse(seed)
	if err != nil || u.Host == "" {
		return "sitegraph"
	}
	return strings.NewReplacer(":", "_", "[", "", "]", "").Replace(strings.ToLower(u.Host))
}

// Ensure FileExporter implements sitegraph.Exporter at compile time.
var _ sitegraph.Exporter = (*FileExporter)(nil)

// FileExporter runs a writer-based exporter against a file. Output goes to a
// temporary file in the same directory that replaces the target only once
// the export succeeds, so a failed export never leaves a partial file.
type FileExporter struct {
	path        string
	newExporter func(w io.Writer) sitegraph.Exporter
}

// NewFileExporter creates a FileExporter writing to path.
func NewFileExporter(path string, newExporter func(w io.Writer) sitegraph.Exporter) *FileExporter {
	return &FileExporter{path: path, newExporter: newExporter}
}

// Path returns the file the export is written to.
func (e *FileExporter) Path() string {
	return e.path
}

// Export writes r to the file.
func (e *FileExporter) Export(ctx context.Context, r *sitegraph.Report) (err error) {
	dir := filepath.Dir(e.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(e.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := e.newExporter(w).Export(ctx, r); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), e.path)
}
