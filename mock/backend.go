package mock

import (
	"context"

	"github.com/fwojciec/docsel"
)

var _ docsel.Backend = (*Backend)(nil)

// Backend is a mock implementation of docsel.Backend.
type Backend struct {
	ElementsFn        func(ctx context.Context, kind docsel.ElementKind) ([]docsel.Element, error)
	ElementsInRangeFn func(ctx context.Context, kind docsel.ElementKind, r docsel.Range) ([]docsel.Element, error)
	DocumentRangeFn   func(ctx context.Context) (docsel.Range, error)
	ParentFn          func(ctx context.Context, el docsel.Element) (docsel.Element, error)
	SetTextFn         func(ctx context.Context, el docsel.Element, text string) error
	InsertTextFn      func(ctx context.Context, offset int, text string) error
	DeleteFn          func(ctx context.Context, el docsel.Element) error
	SetFormatFn       func(ctx context.Context, el docsel.Element, f docsel.Format) error
	AddCommentFn      func(ctx context.Context, r docsel.Range, c docsel.Comment) error
	ReplyToCommentFn  func(ctx context.Context, parent docsel.Element, c docsel.Comment) error
}

func (b *Backend) Elements(ctx context.Context, kind docsel.ElementKind) ([]docsel.Element, error) {
	return b.ElementsFn(ctx, kind)
}

func (b *Backend) ElementsInRange(ctx context.Context, kind docsel.ElementKind, r docsel.Range) ([]docsel.Element, error) {
	return b.ElementsInRangeFn(ctx, kind, r)
}

func (b *Backend) DocumentRange(ctx context.Context) (docsel.Range, error) {
	return b.DocumentRangeFn(ctx)
}

func (b *Backend) Parent(ctx context.Context, el docsel.Element) (docsel.Element, error) {
	return b.ParentFn(ctx, el)
}

func (b *Backend) SetText(ctx context.Context, el docsel.Element, text string) error {
	return b.SetTextFn(ctx, el, text)
}

func (b *Backend) InsertText(ctx context.Context, offset int, text string) error {
	return b.InsertTextFn(ctx, offset, text)
}

func (b *Backend) Delete(ctx context.Context, el docsel.Element) error {
	return b.DeleteFn(ctx, el)
}

func (b *Backend) SetFormat(ctx context.Context, el docsel.Element, f docsel.Format) error {
	return b.SetFormatFn(ctx, el, f)
}

func (b *Backend) AddComment(ctx context.Context, r docsel.Range, c docsel.Comment) error {
	return b.AddCommentFn(ctx, r, c)
}

func (b *Backend) ReplyToComment(ctx context.Context, parent docsel.Element, c docsel.Comment) error {
	return b.ReplyToCommentFn(ctx, parent, c)
}

// NewBackend returns a Backend whose read methods serve the given fixture
// elements. Elements are reported in the order given. The document range
// spans from 0 to the largest element end. Mutation functions are left nil.
func NewBackend(elements ...*Element) *Backend {
	var end int
	for _, el := range elements {
		if el.Span.End > end {
			end = el.Span.End
		}
	}
	ofKind := func(kind docsel.ElementKind, keep func(*Element) bool) []docsel.Element {
		out := []docsel.Element{}
		for _, el := range elements {
			if el.ElementKind == kind && keep(el) {
				out = append(out, el)
			}
		}
		return out
	}
	return &Backend{
		ElementsFn: func(_ context.Context, kind docsel.ElementKind) ([]docsel.Element, error) {
			return ofKind(kind, func(*Element) bool { return true }), nil
		},
		ElementsInRangeFn: func(_ context.Context, kind docsel.ElementKind, r docsel.Range) ([]docsel.Element, error) {
			return ofKind(kind, func(el *Element) bool { return r.Overlaps(el.Span) }), nil
		},
		DocumentRangeFn: func(context.Context) (docsel.Range, error) {
			return docsel.Range{Start: 0, End: end}, nil
		},
		ParentFn: func(_ context.Context, el docsel.Element) (docsel.Element, error) {
			e, ok := el.(*Element)
			if !ok || e.ParentElement == nil {
				return nil, nil
			}
			return e.ParentElement, nil
		},
	}
}
