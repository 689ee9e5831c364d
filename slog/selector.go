// Package slog provides logging decorators for docsel services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsel"
)

// Ensure LoggingSelector implements docsel.Selector.
var _ docsel.Selector = (*LoggingSelector)(nil)

// LoggingSelector wraps a Selector with logging of every resolution.
type LoggingSelector struct {
	next   docsel.Selector
	logger *slog.Logger
}

// NewLoggingSelector creates a new LoggingSelector.
func NewLoggingSelector(next docsel.Selector, logger *slog.Logger) *LoggingSelector {
	return &LoggingSelector{next: next, logger: logger}
}

// Select delegates to the wrapped selector and logs the locator, the number
// of matches and the error code.
func (s *LoggingSelector) Select(ctx context.Context, b docsel.Backend, loc *docsel.Locator, opts docsel.SelectOptions) (sel *docsel.Selection, err error) {
	defer func(begin time.Time) {
		count := 0
		if sel != nil {
			count = sel.Len()
		}
		attrs := []any{
			"locator", loc.String(),
			"expect_single", opts.ExpectSingle,
			"count", count,
			"duration", time.Since(begin),
		}
		if err != nil {
			attrs = append(attrs, "code", docsel.ErrorCode(err), "err", err)
			s.logger.Warn("select", attrs...)
			return
		}
		s.logger.Info("select", attrs...)
	}(time.Now())
	return s.next.Select(ctx, b, loc, opts)
}
