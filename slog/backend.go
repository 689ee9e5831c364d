package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsel"
)

// Ensure LoggingBackend implements docsel.Backend.
var _ docsel.Backend = (*LoggingBackend)(nil)

// LoggingBackend wraps a Backend. Reads are logged at debug level and
// mutations at info level.
type LoggingBackend struct {
	next   docsel.Backend
	logger *slog.Logger
}

// NewLoggingBackend creates a new LoggingBackend.
func NewLoggingBackend(next docsel.Backend, logger *slog.Logger) *LoggingBackend {
	return &LoggingBackend{next: next, logger: logger}
}

// Elements delegates to the wrapped backend.
func (b *LoggingBackend) Elements(ctx context.Context, kind docsel.ElementKind) (elements []docsel.Element, err error) {
	defer func(begin time.Time) {
		b.logger.Debug("enumerate elements",
			"kind", kind,
			"count", len(elements),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.Elements(ctx, kind)
}

// ElementsInRange delegates to the wrapped backend.
func (b *LoggingBackend) ElementsInRange(ctx context.Context, kind docsel.ElementKind, r docsel.Range) (elements []docsel.Element, err error) {
	defer func(begin time.Time) {
		b.logger.Debug("enumerate elements in range",
			"kind", kind,
			"start", r.Start,
			"end", r.End,
			"count", len(elements),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.ElementsInRange(ctx, kind, r)
}

// DocumentRange delegates to the wrapped backend.
func (b *LoggingBackend) DocumentRange(ctx context.Context) (docsel.Range, error) {
	return b.next.DocumentRange(ctx)
}

// Parent delegates to the wrapped backend.
func (b *LoggingBackend) Parent(ctx context.Context, el docsel.Element) (docsel.Element, error) {
	return b.next.Parent(ctx, el)
}

// SetText delegates to the wrapped backend and logs the operation.
func (b *LoggingBackend) SetText(ctx context.Context, el docsel.Element, text string) (err error) {
	defer func(begin time.Time) {
		b.logger.Info("set text",
			"kind", el.Kind(),
			"start", el.Range().Start,
			"length", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.SetText(ctx, el, text)
}

// InsertText delegates to the wrapped backend and logs the operation.
func (b *LoggingBackend) InsertText(ctx context.Context, offset int, text string) (err error) {
	defer func(begin time.Time) {
		b.logger.Info("insert text",
			"offset", offset,
			"length", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.InsertText(ctx, offset, text)
}

// Delete delegates to the wrapped backend and logs the operation.
func (b *LoggingBackend) Delete(ctx context.Context, el docsel.Element) (err error) {
	defer func(begin time.Time) {
		b.logger.Info("delete",
			"kind", el.Kind(),
			"start", el.Range().Start,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.Delete(ctx, el)
}

// SetFormat delegates to the wrapped backend and logs the operation.
func (b *LoggingBackend) SetFormat(ctx context.Context, el docsel.Element, f docsel.Format) (err error) {
	defer func(begin time.Time) {
		b.logger.Info("set format",
			"kind", el.Kind(),
			"start", el.Range().Start,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.SetFormat(ctx, el, f)
}

// AddComment delegates to the wrapped backend and logs the operation.
func (b *LoggingBackend) AddComment(ctx context.Context, r docsel.Range, c docsel.Comment) (err error) {
	defer func(begin time.Time) {
		b.logger.Info("add comment",
			"start", r.Start,
			"end", r.End,
			"author", c.Author,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.AddComment(ctx, r, c)
}

// ReplyToComment delegates to the wrapped backend and logs the operation.
func (b *LoggingBackend) ReplyToComment(ctx context.Context, parent docsel.Element, c docsel.Comment) (err error) {
	defer func(begin time.Time) {
		b.logger.Info("reply to comment",
			"start", parent.Range().Start,
			"author", c.Author,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.ReplyToComment(ctx, parent, c)
}
