package mock

import (
	"context"
	"io"

	"github.com/fwojciec/docsel"
)

var _ docsel.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a mock implementation of docsel.DocumentStore.
type DocumentStore struct {
	SaveFn   func(ctx context.Context, path string, doc io.WriterTo) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *DocumentStore) Save(ctx context.Context, path string, doc io.WriterTo) error {
	return s.SaveFn(ctx, path, doc)
}

func (s *DocumentStore) Commit() error {
	return s.CommitFn()
}

func (s *DocumentStore) Abort() error {
	return s.AbortFn()
}

var _ docsel.ExcerptWriter = (*ExcerptWriter)(nil)

// ExcerptWriter is a mock implementation of docsel.ExcerptWriter.
type ExcerptWriter struct {
	WriteExcerptFn func(ctx context.Context, excerpt *docsel.Excerpt) error
}

func (w *ExcerptWriter) WriteExcerpt(ctx context.Context, excerpt *docsel.Excerpt) error {
	return w.WriteExcerptFn(ctx, excerpt)
}
