package docsel

import (
	"context"
	"io"
	"time"
)

// Document is a backend that can serialize itself.
type Document interface {
	Backend
	io.WriterTo
}

// DocumentStore persists serialized documents with atomic update
// semantics. Documents are staged by Save and only replace the files at
// their paths on Commit, so a batch of edits lands together or not at all.
type DocumentStore interface {
	// Save stages the serialized contents of doc for path.
	Save(ctx context.Context, path string, doc io.WriterTo) error

	// Commit replaces every staged path with its staged contents.
	Commit() error

	// Abort discards all staged contents.
	Abort() error
}

// Excerpt is the Markdown rendering of a selection taken from a document.
type Excerpt struct {
	SourcePath string
	Locator    string
	Content    string
	ExportedAt time.Time
}

// Validate returns an error if the excerpt contains invalid fields.
func (e *Excerpt) Validate() error {
	if e.SourcePath == "" {
		return Errorf(EINVALID, "excerpt source path required")
	}
	if e.Content == "" {
		return Errorf(EINVALID, "excerpt content required")
	}
	return nil
}

// ExcerptWriter writes excerpts to storage.
type ExcerptWriter interface {
	// WriteExcerpt persists an excerpt.
	WriteExcerpt(ctx context.Context, excerpt *Excerpt) error
}
