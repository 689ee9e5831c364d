package etree

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/fwojciec/docsel"
)

// Characters the text stream uses for non-text run content.
const (
	paragraphMark = "\r"
	lineBreak     = "\v"
	shapeMark     = "/"
)

// Shape type names reported for inline shapes.
const (
	ShapePicture          = "Picture"
	ShapeLinkedPicture    = "LinkedPicture"
	ShapeChart            = "Chart"
	ShapeSmartArt         = "SmartArt"
	ShapeOLEObject        = "OLEObject"
	ShapeOLEControlObject = "OLEControlObject"
)

// element is the docsel.Element handle for a node of the main or the
// comments part.
type element struct {
	doc    *Document
	kind   docsel.ElementKind
	node   *etree.Element
	rng    docsel.Range
	text   string
	style  string
	bold   bool
	boldOK bool
	cell   *docsel.CellPosition
	shape  string
	list   string
	parent *element

	// segments maps paragraph-relative offsets to run content.
	segments []segment
}

var _ docsel.Element = (*element)(nil)

func (e *element) Kind() docsel.ElementKind { return e.kind }
func (e *element) Range() docsel.Range      { return e.rng }
func (e *element) Text() string             { return e.text }
func (e *element) StyleName() string        { return e.style }
func (e *element) Bold() (bool, bool)       { return e.bold, e.boldOK }
func (e *element) ShapeType() string        { return e.shape }
func (e *element) ListString() string       { return e.list }

func (e *element) Cell() (docsel.CellPosition, bool) {
	if e.cell == nil {
		return docsel.CellPosition{}, false
	}
	return *e.cell, true
}

// segment is one piece of run content inside a paragraph.
type segment struct {
	run   *etree.Element
	child *etree.Element
	start int
	size  int
}

// layout is a snapshot of the document's elements and offsets.
type layout struct {
	paragraphs []*element
	tables     []*element
	cells      []*element
	runs       []*element
	shapes     []*element
	comments   []*element
	stream     []rune
}

func (l *layout) end() int { return len(l.stream) }

func (l *layout) elements(kind docsel.ElementKind) ([]*element, bool) {
	switch kind {
	case docsel.KindParagraph:
		return l.paragraphs, true
	case docsel.KindTable:
		return l.tables, true
	case docsel.KindCell:
		return l.cells, true
	case docsel.KindRun:
		return l.runs, true
	case docsel.KindInlineShape:
		return l.shapes, true
	case docsel.KindComment:
		return l.comments, true
	}
	return nil, false
}

// paragraphAt returns the paragraph whose range holds offset.
func (l *layout) paragraphAt(offset int) *element {
	i, found := slices.BinarySearchFunc(l.paragraphs, offset, func(p *element, off int) int {
		switch {
		case p.rng.End <= off:
			return -1
		case p.rng.Start > off:
			return 1
		}
		return 0
	})
	if !found {
		return nil
	}
	return l.paragraphs[i]
}

// builder walks the main part in document order and assigns offsets.
type builder struct {
	doc     *Document
	styles  *styleSheet
	out     *layout
	tables  int
	starts  map[string]int
	ends    map[string]int
	refs    map[string]int
	pending *paragraphState
}

// paragraphState accumulates run information for the paragraph being walked.
type paragraphState struct {
	el       *element
	styleID  string
	text     strings.Builder
	runs     int
	boldRuns int
}

func (d *Document) layout() *layout {
	b := &builder{
		doc:    d,
		styles: d.styles,
		out:    &layout{},
		starts: make(map[string]int),
		ends:   make(map[string]int),
		refs:   make(map[string]int),
	}
	if body := d.body(); body != nil {
		b.blocks(body, nil)
	}
	b.comments()
	return b.out
}

func (b *builder) offset() int { return len(b.out.stream) }

func (b *builder) emit(s string) {
	b.out.stream = append(b.out.stream, []rune(s)...)
}

func (b *builder) blocks(container *etree.Element, parent *element) {
	for _, child := range container.ChildElements() {
		switch {
		case is(child, "p"):
			b.paragraph(child, parent)
		case is(child, "tbl"):
			b.table(child, parent)
		case is(child, "sdt"):
			if content := child.SelectElement("w:sdtContent"); content != nil {
				b.blocks(content, parent)
			}
		case is(child, "customXml"):
			b.blocks(child, parent)
		}
	}
}

func (b *builder) paragraph(p *etree.Element, parent *element) {
	styleID := b.styles.paragraphStyleID(p)
	el := &element{
		doc:    b.doc,
		kind:   docsel.KindParagraph,
		node:   p,
		style:  b.styles.name(styleID),
		list:   b.styles.listSignature(p, styleID),
		parent: parent,
	}
	el.rng.Start = b.offset()
	b.out.paragraphs = append(b.out.paragraphs, el)

	state := &paragraphState{el: el, styleID: styleID}
	b.pending = state
	b.inline(p)
	b.pending = nil

	b.emit(paragraphMark)
	el.rng.End = b.offset()
	el.text = state.text.String() + paragraphMark

	switch {
	case state.runs == 0:
		el.bold, el.boldOK = b.styles.styleBold(styleID)
		if !el.boldOK {
			el.bold, el.boldOK = b.styles.defaultBold, true
		}
	case state.boldRuns == state.runs:
		el.bold, el.boldOK = true, true
	case state.boldRuns == 0:
		el.bold, el.boldOK = false, true
	}
}

func (b *builder) inline(container *etree.Element) {
	for _, child := range container.ChildElements() {
		switch {
		case is(child, "r"):
			b.run(child)
		case is(child, "hyperlink"), is(child, "ins"), is(child, "smartTag"), is(child, "fldSimple"),
			is(child, "customXml"), is(child, "moveTo"), is(child, "dir"), is(child, "bdo"):
			b.inline(child)
		case is(child, "sdt"):
			if content := child.SelectElement("w:sdtContent"); content != nil {
				b.inline(content)
			}
		case is(child, "commentRangeStart"):
			b.starts[child.SelectAttrValue("w:id", "")] = b.offset()
		case is(child, "commentRangeEnd"):
			b.ends[child.SelectAttrValue("w:id", "")] = b.offset()
		}
	}
}

func (b *builder) run(r *etree.Element) {
	state := b.pending
	pStart := state.el.rng.Start
	run := &element{
		doc:    b.doc,
		kind:   docsel.KindRun,
		node:   r,
		parent: state.el,
	}
	run.rng.Start = b.offset()

	var text strings.Builder
	add := func(child *etree.Element, s string) {
		state.el.segments = append(state.el.segments, segment{
			run:   r,
			child: child,
			start: b.offset() - pStart,
			size:  utf8.RuneCountInString(s),
		})
		text.WriteString(s)
		b.emit(s)
	}

	for _, child := range r.ChildElements() {
		switch {
		case is(child, "t"):
			if s := child.Text(); s != "" {
				add(child, s)
			}
		case is(child, "tab"):
			add(child, "\t")
		case is(child, "br"), is(child, "cr"):
			add(child, lineBreak)
		case is(child, "noBreakHyphen"):
			add(child, "-")
		case is(child, "drawing"), is(child, "pict"), is(child, "object"):
			if shape := shapeType(child); shape != "" {
				b.out.shapes = append(b.out.shapes, &element{
					doc:    b.doc,
					kind:   docsel.KindInlineShape,
					node:   child,
					rng:    docsel.Range{Start: b.offset(), End: b.offset() + 1},
					text:   shapeMark,
					shape:  shape,
					parent: run,
				})
			}
			add(child, shapeMark)
		case is(child, "commentReference"):
			b.refs[child.SelectAttrValue("w:id", "")] = b.offset()
		}
	}
	if text.Len() == 0 {
		return
	}

	run.rng.End = b.offset()
	run.text = text.String()
	run.style = b.styles.runStyleName(r)
	if run.style == "" {
		run.style = state.el.style
	}
	run.bold, run.boldOK = b.styles.runBold(r, state.styleID), true
	b.out.runs = append(b.out.runs, run)

	state.text.WriteString(run.text)
	state.runs++
	if run.bold {
		state.boldRuns++
	}
}

// shapeType classifies inline drawing content. Floating drawings are not
// inline shapes and yield "".
func shapeType(el *etree.Element) string {
	switch {
	case is(el, "pict"):
		return ShapePicture
	case is(el, "object"):
		if el.SelectElement("w:control") != nil {
			return ShapeOLEControlObject
		}
		return ShapeOLEObject
	}

	inline := el.SelectElement("wp:inline")
	if inline == nil {
		return ""
	}
	data := inline.FindElement(".//a:graphicData")
	if data == nil {
		return ShapePicture
	}
	uri := data.SelectAttrValue("uri", "")
	switch {
	case strings.Contains(uri, "/chart"):
		return ShapeChart
	case strings.Contains(uri, "/diagram"):
		return ShapeSmartArt
	}
	if blip := data.FindElement(".//a:blip"); blip != nil {
		if blip.SelectAttr("r:embed") == nil && blip.SelectAttr("r:link") != nil {
			return ShapeLinkedPicture
		}
	}
	return ShapePicture
}

func (b *builder) table(tbl *etree.Element, parent *element) {
	t := &element{
		doc:    b.doc,
		kind:   docsel.KindTable,
		node:   tbl,
		parent: parent,
	}
	ordinal := b.tables
	b.tables++
	t.rng.Start = b.offset()
	b.out.tables = append(b.out.tables, t)

	var text strings.Builder
	for ri, tr := range tbl.SelectElements("w:tr") {
		for ci, tc := range tr.SelectElements("w:tc") {
			cell := &element{
				doc:    b.doc,
				kind:   docsel.KindCell,
				node:   tc,
				parent: t,
				cell:   &docsel.CellPosition{Row: ri + 1, Column: ci + 1, Table: ordinal},
			}
			cell.rng.Start = b.offset()
			b.out.cells = append(b.out.cells, cell)
			first := len(b.out.paragraphs)

			b.blocks(tc, cell)

			cell.rng.End = b.offset()
			cell.text = strings.TrimSuffix(string(b.out.stream[cell.rng.Start:cell.rng.End]), paragraphMark)
			if first < len(b.out.paragraphs) {
				p := b.out.paragraphs[first]
				cell.style = p.style
				cell.bold, cell.boldOK = p.bold, p.boldOK
			}

			if ci > 0 {
				text.WriteString("\t")
			}
			text.WriteString(strings.ReplaceAll(cell.text, paragraphMark, lineBreak))
		}
		text.WriteString(paragraphMark)
	}
	t.rng.End = b.offset()
	t.text = text.String()
}

// comments resolves comment ranges from the markers recorded in the body.
func (b *builder) comments() {
	part := b.doc.comments
	if part == nil || part.doc.Root() == nil {
		return
	}
	for _, c := range part.doc.Root().SelectElements("w:comment") {
		id := c.SelectAttrValue("w:id", "")
		start, hasStart := b.starts[id]
		end, hasEnd := b.ends[id]
		ref, hasRef := b.refs[id]
		switch {
		case hasStart && hasEnd:
		case hasStart:
			end = start
			if hasRef {
				end = ref
			}
		case hasRef:
			start, end = ref, ref
		default:
			continue
		}
		if end < start {
			end = start
		}

		var lines []string
		for _, p := range c.SelectElements("w:p") {
			lines = append(lines, plainText(p))
		}
		b.out.comments = append(b.out.comments, &element{
			doc:  b.doc,
			kind: docsel.KindComment,
			node: c,
			rng:  docsel.Range{Start: start, End: end},
			text: strings.Join(lines, paragraphMark),
		})
	}
	slices.SortStableFunc(b.out.comments, func(x, y *element) int {
		return x.rng.Start - y.rng.Start
	})
}

// plainText concatenates the visible text of a paragraph outside the body.
func plainText(p *etree.Element) string {
	var sb strings.Builder
	for _, r := range p.FindElements(".//w:r") {
		for _, child := range r.ChildElements() {
			switch {
			case is(child, "t"):
				sb.WriteString(child.Text())
			case is(child, "tab"):
				sb.WriteString("\t")
			case is(child, "br"), is(child, "cr"):
				sb.WriteString(lineBreak)
			}
		}
	}
	return sb.String()
}

// is reports whether el is the WordprocessingML element tag.
func is(el *etree.Element, tag string) bool {
	return el.Space == "w" && el.Tag == tag
}
