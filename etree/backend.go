package etree

import (
	"context"

	"github.com/fwojciec/docsel"
)

// Elements returns every element of kind in document order.
func (d *Document) Elements(ctx context.Context, kind docsel.ElementKind) ([]docsel.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	elements, ok := d.layout().elements(kind)
	if !ok {
		return nil, docsel.Errorf(docsel.EINVALID, "unsupported element kind %q", kind)
	}
	return handles(elements, nil), nil
}

// ElementsInRange returns the elements of kind overlapping r.
func (d *Document) ElementsInRange(ctx context.Context, kind docsel.ElementKind, r docsel.Range) ([]docsel.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	elements, ok := d.layout().elements(kind)
	if !ok {
		return nil, docsel.Errorf(docsel.EINVALID, "unsupported element kind %q", kind)
	}
	return handles(elements, func(el *element) bool {
		return r.Overlaps(el.rng)
	}), nil
}

// DocumentRange returns the span of the main text stream.
func (d *Document) DocumentRange(ctx context.Context) (docsel.Range, error) {
	if err := ctx.Err(); err != nil {
		return docsel.Range{}, err
	}
	return docsel.Range{Start: 0, End: d.layout().end()}, nil
}

// Parent returns the structural parent of el: a run's paragraph, a
// paragraph's cell, a cell's table, a nested table's cell or an inline
// shape's run.
func (d *Document) Parent(ctx context.Context, el docsel.Element) (docsel.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := d.handle(el)
	if err != nil {
		return nil, err
	}
	if e.parent == nil {
		return nil, nil
	}
	return e.parent, nil
}

// handle unwraps an element enumerated from d whose node is still attached.
func (d *Document) handle(el docsel.Element) (*element, error) {
	e, ok := el.(*element)
	if !ok || e.doc != d {
		return nil, docsel.Errorf(docsel.EINVALID, "element does not belong to this document")
	}
	if !d.attached(e.node) {
		return nil, docsel.Errorf(docsel.EINVALID, "%s is no longer part of the document", e.kind)
	}
	return e, nil
}

func handles(elements []*element, pred func(*element) bool) []docsel.Element {
	out := make([]docsel.Element, 0, len(elements))
	for _, el := range elements {
		if pred == nil || pred(el) {
			out = append(out, el)
		}
	}
	return out
}
