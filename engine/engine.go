// Package engine resolves locators against a document backend.
//
// Resolution runs strictly downward: the locator is validated before the
// backend is touched, candidates are retrieved (globally or relative to an
// anchor), the target filters narrow them, and the result is wrapped in a
// docsel.Selection. Every call re-enumerates the backend; nothing is cached.
package engine

import (
	"context"

	"github.com/fwojciec/docsel"
)

// Ensure Engine implements docsel.Selector at compile time.
var _ docsel.Selector = (*Engine)(nil)

// Engine is the docsel.Selector implementation.
type Engine struct{}

// New creates a new Engine.
func New() *Engine {
	return &Engine{}
}

// Select resolves loc against b.
func (e *Engine) Select(ctx context.Context, b docsel.Backend, loc *docsel.Locator, opts docsel.SelectOptions) (*docsel.Selection, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	var candidates []docsel.Element
	if loc.Anchor == nil {
		var err error
		if candidates, err = Candidates(ctx, b, loc.Target.Type, nil); err != nil {
			return nil, err
		}
	} else {
		anchor, err := ResolveAnchor(ctx, b, loc.Anchor)
		if err != nil {
			return nil, err
		}
		if candidates, err = SelectRelative(ctx, b, anchor, loc.Relation, loc.Target.Type); err != nil {
			return nil, err
		}
	}

	elements, err := docsel.ApplyFilters(candidates, loc.Target.Filters)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, docsel.NotFoundError(loc, "no %s matches the locator", loc.Target.Type)
	}
	if opts.ExpectSingle && len(elements) > 1 {
		return nil, docsel.AmbiguousError(loc, len(elements))
	}
	return docsel.NewSelection(elements, b)
}
