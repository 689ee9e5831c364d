// Package fs provides file-based storage for documents and excerpts.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docsel"
)

// ExcerptPath converts a document path to the relative path of its excerpt.
// Example: reports/q3.docx → q3.md
func ExcerptPath(sourcePath string) string {
	name := filepath.Base(sourcePath)
	if name == "." || name == string(filepath.Separator) {
		return "index.md"
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".md"
}

// FormatExcerpt formats an excerpt with YAML frontmatter.
func FormatExcerpt(e *docsel.Excerpt) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(e.SourcePath)
	if e.Locator != "" {
		b.WriteString("\nlocator: '")
		b.WriteString(strings.ReplaceAll(e.Locator, "'", "''"))
		b.WriteString("'")
	}
	b.WriteString("\nexported: ")
	b.WriteString(e.ExportedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(e.Content)
	return b.String()
}

// Ensure Writer implements docsel.ExcerptWriter at compile time.
var _ docsel.ExcerptWriter = (*Writer)(nil)

// Writer writes excerpts as markdown files to a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteExcerpt writes an excerpt to disk as a markdown file.
func (w *Writer) WriteExcerpt(ctx context.Context, e *docsel.Excerpt) error {
	if err := e.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return err
	}

	fullPath := filepath.Join(w.baseDir, ExcerptPath(e.SourcePath))
	return os.WriteFile(fullPath, []byte(FormatExcerpt(e)), 0644)
}
