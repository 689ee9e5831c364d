package docsel

import "context"

// ElementKind identifies a class of document element.
type ElementKind string

// Element kinds a locator may target.
const (
	KindParagraph   ElementKind = "paragraph"
	KindTable       ElementKind = "table"
	KindCell        ElementKind = "cell"
	KindRun         ElementKind = "run"
	KindInlineShape ElementKind = "inline_shape"
	KindComment     ElementKind = "comment"

	// KindHeading is derived: paragraphs whose style name follows a heading
	// convention. Backends never report it from Element.Kind.
	KindHeading ElementKind = "heading"
)

// Pseudo kinds accepted only by anchors. They resolve to zero-width ranges
// at the start and at the end of the document.
const (
	KindStartOfDocument ElementKind = "start_of_document"
	KindEndOfDocument   ElementKind = "end_of_document"
)

// kindAliases maps alternative wire names onto canonical kinds.
var kindAliases = map[string]ElementKind{
	"image":          KindInlineShape,
	"document_start": KindStartOfDocument,
	"document_end":   KindEndOfDocument,
}

// ParseElementKind returns the canonical kind for a wire name.
// The second result is false if the name is not a known kind.
func ParseElementKind(s string) (ElementKind, bool) {
	if k, ok := kindAliases[s]; ok {
		return k, true
	}
	switch k := ElementKind(s); k {
	case KindParagraph, KindTable, KindCell, KindRun, KindInlineShape, KindComment, KindHeading,
		KindStartOfDocument, KindEndOfDocument:
		return k, true
	}
	return "", false
}

// IsPseudo reports whether k is an anchor-only position kind.
func (k ElementKind) IsPseudo() bool {
	return k == KindStartOfDocument || k == KindEndOfDocument
}

// Range is a half-open [Start, End) offset pair into the document's linear
// text stream.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of offsets covered by r.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether o lies entirely within r.
func (r Range) Contains(o Range) bool {
	return o.Start >= r.Start && o.End <= r.End
}

// Overlaps reports whether o shares at least one offset with r.
// A zero-width r overlaps any range that covers its position.
func (r Range) Overlaps(o Range) bool {
	if r.Start == r.End {
		return o.Start <= r.Start && r.Start < o.End
	}
	if o.Start == o.End {
		return r.Start <= o.Start && o.Start < r.End
	}
	return o.Start < r.End && o.End > r.Start
}

// CellPosition locates a table cell. Row and Column are reported as the
// backend numbers them; Table is the 0-based ordinal of the parent table.
type CellPosition struct {
	Row    int `json:"row"`
	Column int `json:"column"`
	Table  int `json:"table"`
}

// Element is an opaque handle onto a document element supplied by a backend.
// Attribute accessors return zero values when an attribute does not apply
// to the element's kind.
type Element interface {
	// Kind returns the concrete kind. Headings report KindParagraph.
	Kind() ElementKind

	// Range returns the element's offsets at the time it was enumerated.
	Range() Range

	// Text returns the rendered text. Paragraph text includes the
	// terminating paragraph mark.
	Text() string

	// StyleName returns the style's display name, or "".
	StyleName() string

	// Bold returns the bold flag. ok is false when the element has no
	// single bold state (mixed formatting or not applicable).
	Bold() (bold bool, ok bool)

	// Cell returns the cell position. ok is false for non-cell elements.
	Cell() (pos CellPosition, ok bool)

	// ShapeType returns the inline shape type name (e.g. "Picture"), or "".
	ShapeType() string

	// ListString returns the list-format signature, or "" when the
	// element is not a list item.
	ListString() string
}

// DocumentReader enumerates the elements of a document.
type DocumentReader interface {
	// Elements returns every element of a concrete kind in document order.
	Elements(ctx context.Context, kind ElementKind) ([]Element, error)

	// ElementsInRange returns elements of a concrete kind overlapping r,
	// in document order.
	ElementsInRange(ctx context.Context, kind ElementKind, r Range) ([]Element, error)

	// DocumentRange returns the span of the whole document.
	DocumentRange(ctx context.Context) (Range, error)

	// Parent returns the structural parent of el (a run's paragraph, a
	// cell's table). Returns nil without error at the top level.
	Parent(ctx context.Context, el Element) (Element, error)
}

// DocumentWriter mutates the elements of a document.
type DocumentWriter interface {
	// SetText overwrites the text of el.
	SetText(ctx context.Context, el Element, text string) error

	// InsertText inserts text at the given offset.
	InsertText(ctx context.Context, offset int, text string) error

	// Delete removes el from the document.
	Delete(ctx context.Context, el Element) error

	// SetFormat applies every set attribute of f to el.
	SetFormat(ctx context.Context, el Element, f Format) error

	// AddComment attaches a new comment to the text in r.
	AddComment(ctx context.Context, r Range, c Comment) error

	// ReplyToComment adds a reply to the comment element parent.
	ReplyToComment(ctx context.Context, parent Element, c Comment) error
}

// Backend is the capability set the selector engine and Selection need.
type Backend interface {
	DocumentReader
	DocumentWriter
}
