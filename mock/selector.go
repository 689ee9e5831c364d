package mock

import (
	"context"

	"github.com/fwojciec/docsel"
)

var _ docsel.Selector = (*Selector)(nil)

// Selector is a mock implementation of docsel.Selector.
type Selector struct {
	SelectFn func(ctx context.Context, b docsel.Backend, loc *docsel.Locator, opts docsel.SelectOptions) (*docsel.Selection, error)
}

func (s *Selector) Select(ctx context.Context, b docsel.Backend, loc *docsel.Locator, opts docsel.SelectOptions) (*docsel.Selection, error) {
	return s.SelectFn(ctx, b, loc, opts)
}
