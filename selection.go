package docsel

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Position is where Selection.InsertText places text.
type Position string

// Insert positions.
const (
	PositionBefore  Position = "before"
	PositionAfter   Position = "after"
	PositionReplace Position = "replace"
)

// ParsePosition validates an insert position name.
func ParsePosition(s string) (Position, error) {
	switch p := Position(s); p {
	case PositionBefore, PositionAfter, PositionReplace:
		return p, nil
	}
	return "", Errorf(EINVALID, "position must be one of before, after, replace; got %q", s)
}

// paragraphMark terminates every paragraph's text.
const paragraphMark = "\r"

// Selection is an ordered, non-empty set of elements bound to the backend
// they were found in. A Selection holds no document content of its own and
// should be discarded after one read or mutation.
type Selection struct {
	elements []Element
	backend  Backend
}

// NewSelection wraps elements found in backend. Returns ENOTFOUND when
// elements is empty.
func NewSelection(elements []Element, backend Backend) (*Selection, error) {
	if len(elements) == 0 {
		return nil, Errorf(ENOTFOUND, "selection must contain at least one element")
	}
	return &Selection{elements: elements, backend: backend}, nil
}

// Elements returns the selected elements in document order.
func (s *Selection) Elements() []Element {
	out := make([]Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// Len returns the number of selected elements.
func (s *Selection) Len() int { return len(s.elements) }

// Text concatenates the text of every element. Paragraph elements have their
// terminating paragraph mark removed.
func (s *Selection) Text() string {
	var b strings.Builder
	for _, el := range s.elements {
		text := el.Text()
		if el.Kind() == KindParagraph {
			text = strings.TrimSuffix(text, paragraphMark)
		}
		b.WriteString(text)
	}
	return b.String()
}

// ElementInfo is a read-only description of a selected element.
type ElementInfo struct {
	Index     int           `json:"index"`
	Kind      ElementKind   `json:"kind"`
	Range     Range         `json:"range"`
	Text      string        `json:"text"`
	Style     string        `json:"style,omitempty"`
	Cell      *CellPosition `json:"cell,omitempty"`
	ShapeType string        `json:"shape_type,omitempty"`
	List      string        `json:"list,omitempty"`
}

// Describe returns a description of every selected element.
func (s *Selection) Describe() []ElementInfo {
	infos := make([]ElementInfo, len(s.elements))
	for i, el := range s.elements {
		info := ElementInfo{
			Index:     i,
			Kind:      el.Kind(),
			Range:     el.Range(),
			Text:      strings.TrimSuffix(el.Text(), paragraphMark),
			Style:     el.StyleName(),
			ShapeType: el.ShapeType(),
			List:      el.ListString(),
		}
		if pos, ok := el.Cell(); ok {
			info.Cell = &pos
		}
		infos[i] = info
	}
	return infos
}

// ApplyFormat applies the recognized keys of options to every element.
// Unknown keys are ignored.
func (s *Selection) ApplyFormat(ctx context.Context, options map[string]any) error {
	f, err := ParseFormat(options)
	if err != nil {
		return err
	}
	if f.IsZero() {
		return nil
	}
	for _, el := range s.elements {
		if err := s.backend.SetFormat(ctx, el, f); err != nil {
			return err
		}
	}
	return nil
}

// InsertText inserts text at the start of the first element, at the end of
// the last element's content, or in place of the whole selection. The
// text stays inside the element it is anchored on: after a paragraph it
// goes before the paragraph mark.
//
// With a non-empty style the text is inserted as paragraphs of its own,
// ahead of the first element or following the last, and those paragraphs
// get the named paragraph style.
func (s *Selection) InsertText(ctx context.Context, text string, pos Position, style string) error {
	first, last := s.elements[0], s.elements[len(s.elements)-1]

	var offset, styled int
	inserted := text
	switch pos {
	case PositionBefore:
		offset = first.Range().Start
		styled = offset
		if style != "" {
			inserted = text + "\n"
		}
	case PositionAfter:
		offset = contentEnd(last)
		// The new paragraphs start right after the inserted paragraph mark.
		styled = offset + 1
		if style != "" {
			inserted = "\n" + text
		}
	case PositionReplace:
		// Later elements go first so earlier offsets stay valid.
		for i := len(s.elements) - 1; i > 0; i-- {
			if err := s.backend.Delete(ctx, s.elements[i]); err != nil {
				return err
			}
		}
		if err := s.backend.SetText(ctx, first, text); err != nil {
			return err
		}
		if style == "" {
			return nil
		}
		return s.styleParagraphs(ctx, first.Range().Start, text, style)
	default:
		_, err := ParsePosition(string(pos))
		return err
	}

	if err := s.backend.InsertText(ctx, offset, inserted); err != nil {
		return err
	}
	if style == "" {
		return nil
	}
	return s.styleParagraphs(ctx, styled, text, style)
}

// contentEnd returns the offset just past el's content. Paragraph, cell and
// table ranges end with a paragraph mark that belongs to the element, so
// their content stops one offset earlier.
func contentEnd(el Element) int {
	r := el.Range()
	switch el.Kind() {
	case KindParagraph, KindHeading, KindCell, KindTable:
		if r.End > r.Start {
			return r.End - 1
		}
	}
	return r.End
}

// styleParagraphs applies a paragraph style to the paragraphs holding text
// written at offset.
func (s *Selection) styleParagraphs(ctx context.Context, offset int, text, style string) error {
	n := utf8.RuneCountInString(strings.ReplaceAll(text, "\r\n", "\n"))
	paragraphs, err := s.backend.ElementsInRange(ctx, KindParagraph, Range{Start: offset, End: offset + max(n, 1)})
	if err != nil {
		return err
	}
	f := Format{ParagraphStyle: &style}
	for _, p := range paragraphs {
		if err := s.backend.SetFormat(ctx, p, f); err != nil {
			return err
		}
	}
	return nil
}

// AddComment attaches one comment spanning the whole selection, from the
// start of the first element to the end of the last element's content.
func (s *Selection) AddComment(ctx context.Context, c Comment) error {
	r := Range{Start: s.elements[0].Range().Start, End: contentEnd(s.elements[len(s.elements)-1])}
	if r.End < r.Start {
		r.End = r.Start
	}
	return s.backend.AddComment(ctx, r, c.WithDefaults())
}

// ReplyToComments adds a reply to every selected comment. Every element must
// be a comment.
func (s *Selection) ReplyToComments(ctx context.Context, c Comment) error {
	if err := s.requireKind(KindComment); err != nil {
		return err
	}
	c = c.WithDefaults()
	for _, el := range s.elements {
		if err := s.backend.ReplyToComment(ctx, el, c); err != nil {
			return err
		}
	}
	return nil
}

// EditComments overwrites the text of every selected comment. Every element
// must be a comment.
func (s *Selection) EditComments(ctx context.Context, text string) error {
	if err := s.requireKind(KindComment); err != nil {
		return err
	}
	return s.ReplaceText(ctx, text)
}

func (s *Selection) requireKind(kind ElementKind) error {
	for _, el := range s.elements {
		if el.Kind() != kind {
			return Errorf(EINVALID, "selection must contain only %s elements, found %s", kind, el.Kind())
		}
	}
	return nil
}

// ReplaceText overwrites the text of every element.
func (s *Selection) ReplaceText(ctx context.Context, text string) error {
	for i := len(s.elements) - 1; i >= 0; i-- {
		if err := s.backend.SetText(ctx, s.elements[i], text); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes every element from the document.
func (s *Selection) Delete(ctx context.Context) error {
	for i := len(s.elements) - 1; i >= 0; i-- {
		if err := s.backend.Delete(ctx, s.elements[i]); err != nil {
			return err
		}
	}
	return nil
}
