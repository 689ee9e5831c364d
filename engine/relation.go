package engine

import (
	"context"

	"github.com/fwojciec/docsel"
)

// Anchor is a resolved reference point. Element is nil for the start and end
// of document pseudo anchors.
type Anchor struct {
	Element docsel.Element
	Range   docsel.Range
}

// ResolveAnchor resolves spec to a single reference point. When several
// elements match, the first in document order is used. Returns ENOTFOUND
// tagged with spec when nothing matches.
func ResolveAnchor(ctx context.Context, r docsel.DocumentReader, spec *docsel.TargetSpec) (*Anchor, error) {
	switch spec.Type {
	case docsel.KindStartOfDocument:
		return &Anchor{Range: docsel.Range{Start: 0, End: 0}}, nil
	case docsel.KindEndOfDocument:
		doc, err := r.DocumentRange(ctx)
		if err != nil {
			return nil, err
		}
		return &Anchor{Range: docsel.Range{Start: doc.End, End: doc.End}}, nil
	}

	candidates, err := Candidates(ctx, r, spec.Type, nil)
	if err != nil {
		return nil, err
	}
	matches, err := docsel.ApplyFilters(candidates, spec.Filters)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, docsel.NotFoundError(spec, "anchor %s not found", spec.Type)
	}
	return &Anchor{Element: matches[0], Range: matches[0].Range()}, nil
}

// SelectRelative returns the candidates of kind positioned relative to
// anchor by rel. The result is empty, not an error, when nothing qualifies.
func SelectRelative(ctx context.Context, r docsel.DocumentReader, anchor *Anchor, rel docsel.Relation, kind docsel.ElementKind) ([]docsel.Element, error) {
	switch rel {
	case docsel.RelationAllOccurrencesWithin:
		scope := anchor.Range
		return Candidates(ctx, r, kind, &scope)
	case docsel.RelationFirstOccurrenceAfter:
		return nextAfter(ctx, r, anchor, kind, false)
	case docsel.RelationImmediatelyFollowing:
		return nextAfter(ctx, r, anchor, kind, true)
	case docsel.RelationParentOf:
		return parentOf(ctx, r, anchor, kind)
	default:
		return nil, docsel.SyntaxErrorf(rel, "unknown relation %q", rel)
	}
}

// nextAfter returns the single element of kind with the smallest start at
// or after the anchor's end. The search scope runs to the end of the
// document, or when windowed covers only the offset right after the anchor.
// Windowed searches keep any element overlapping the window so that boxed
// kinds starting there qualify.
func nextAfter(ctx context.Context, r docsel.DocumentReader, anchor *Anchor, kind docsel.ElementKind, windowed bool) ([]docsel.Element, error) {
	doc, err := r.DocumentRange(ctx)
	if err != nil {
		return nil, err
	}
	after := anchor.Range.End
	if after >= doc.End {
		return nil, nil
	}

	var candidates []docsel.Element
	if windowed {
		candidates, err = retrieve(ctx, r, kind, &docsel.Range{Start: after, End: after + 1})
	} else {
		candidates, err = Candidates(ctx, r, kind, &docsel.Range{Start: after, End: doc.End})
	}
	if err != nil {
		return nil, err
	}

	// Candidates are ordered by start, so the first qualifying one wins.
	for _, el := range candidates {
		if el.Range().Start >= after {
			return []docsel.Element{el}, nil
		}
	}
	return nil, nil
}

// parentOf walks up from the anchor element to the nearest ancestor of kind.
func parentOf(ctx context.Context, r docsel.DocumentReader, anchor *Anchor, kind docsel.ElementKind) ([]docsel.Element, error) {
	if anchor.Element == nil {
		return nil, docsel.SyntaxErrorf(anchor.Range, "document boundaries have no parent")
	}
	el := anchor.Element
	for {
		parent, err := r.Parent(ctx, el)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, nil
		}
		if isKind(parent, kind) {
			return []docsel.Element{parent}, nil
		}
		el = parent
	}
}
