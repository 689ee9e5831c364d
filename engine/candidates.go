package engine

import (
	"context"
	"slices"

	"github.com/fwojciec/docsel"
)

// Candidates returns the elements of kind in document order. With a scope,
// flowing kinds (paragraphs, headings, runs, tables) are kept when they
// overlap the scope and boxed kinds (cells, inline shapes, comments) only
// when they lie entirely inside it.
//
// Backend failures are returned unchanged.
func Candidates(ctx context.Context, r docsel.DocumentReader, kind docsel.ElementKind, scope *docsel.Range) ([]docsel.Element, error) {
	elements, err := retrieve(ctx, r, kind, scope)
	if err != nil {
		return nil, err
	}
	if scope != nil && containedKind(kind) {
		elements = keep(elements, func(el docsel.Element) bool {
			return scope.Contains(el.Range())
		})
	}
	return elements, nil
}

// retrieve enumerates kind, globally or overlapping scope, resolving the
// heading kind and ordering the result by start offset.
func retrieve(ctx context.Context, r docsel.DocumentReader, kind docsel.ElementKind, scope *docsel.Range) ([]docsel.Element, error) {
	concrete := kind
	if kind == docsel.KindHeading {
		concrete = docsel.KindParagraph
	}

	var elements []docsel.Element
	var err error
	if scope == nil {
		elements, err = r.Elements(ctx, concrete)
	} else {
		elements, err = r.ElementsInRange(ctx, concrete, *scope)
	}
	if err != nil {
		return nil, err
	}

	if kind == docsel.KindHeading {
		elements = keep(elements, isHeading)
	}

	// Equal starts keep backend order.
	slices.SortStableFunc(elements, func(a, b docsel.Element) int {
		return a.Range().Start - b.Range().Start
	})
	return elements, nil
}

func containedKind(kind docsel.ElementKind) bool {
	switch kind {
	case docsel.KindCell, docsel.KindInlineShape, docsel.KindComment:
		return true
	}
	return false
}

// isHeading reports whether el is a paragraph styled as a heading.
func isHeading(el docsel.Element) bool {
	return el.Kind() == docsel.KindParagraph && docsel.IsHeadingStyle(el.StyleName())
}

// isKind reports whether el is of kind, treating headings as a kind of their own.
func isKind(el docsel.Element, kind docsel.ElementKind) bool {
	if kind == docsel.KindHeading {
		return isHeading(el)
	}
	return el.Kind() == kind
}

func keep(elements []docsel.Element, pred func(docsel.Element) bool) []docsel.Element {
	out := make([]docsel.Element, 0, len(elements))
	for _, el := range elements {
		if pred(el) {
			out = append(out, el)
		}
	}
	return out
}
