package mock

import "github.com/fwojciec/docsel"

var _ docsel.Element = (*Element)(nil)

// Element is an in-memory docsel.Element fixture.
type Element struct {
	ElementKind docsel.ElementKind
	Span        docsel.Range
	Content     string
	Style       string
	BoldState   *bool
	Position    *docsel.CellPosition
	Shape       string
	List        string

	// ParentElement is returned by Backend.Parent when built with NewBackend.
	ParentElement *Element
}

func (e *Element) Kind() docsel.ElementKind { return e.ElementKind }
func (e *Element) Range() docsel.Range { return e.Span }
func (e *Element) Text() string { return e.Content }
func (e *Element) StyleName() string { return e.Style }
func (e *Element) ShapeType() string { return e.Shape }
func (e *Element) ListString() string { return e.List }

func (e *Element) Bold() (bool, bool) {
	if e.BoldState == nil {
		return false, false
	}
	return *e.BoldState, true
}

func (e *Element) Cell() (docsel.CellPosition, bool) {
	if e.Position == nil {
		return docsel.CellPosition{}, false
	}
	return *e.Position, true
}

// Paragraph returns a paragraph fixture spanning [start, start+len(text)+1)
// whose text carries a trailing paragraph mark.
func Paragraph(start int, text string) *Element {
	return &Element{
		ElementKind: docsel.KindParagraph,
		Span:        docsel.Range{Start: start, End: start + len([]rune(text)) + 1},
		Content:     text + "\r",
		Style:       "Normal",
	}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }
