package etree

import (
	"context"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docsel"
)

// Child element order of w:rPr and w:pPr in the WordprocessingML schema.
var (
	runPropertyOrder = []string{
		"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps", "strike", "dstrike",
		"outline", "shadow", "emboss", "imprint", "noProof", "snapToGrid", "vanish", "webHidden",
		"color", "spacing", "w", "kern", "position", "sz", "szCs", "highlight", "u", "effect",
		"bdr", "shd", "fitText", "vertAlign", "rtl", "cs", "em", "lang", "eastAsianLayout",
		"specVanish", "oMath", "rPrChange",
	}
	paragraphPropertyOrder = []string{
		"pStyle", "keepNext", "keepLines", "pageBreakBefore", "framePr", "widowControl", "numPr",
		"suppressLineNumbers", "pBdr", "shd", "tabs", "suppressAutoHyphens", "kinsoku", "wordWrap",
		"overflowPunct", "topLinePunct", "autoSpaceDE", "autoSpaceDN", "bidi", "adjustRightInd",
		"snapToGrid", "spacing", "ind", "contextualSpacing", "mirrorIndents", "suppressOverlap",
		"jc", "textDirection", "textAlignment", "textboxTightWrap", "outlineLvl", "divId",
		"cnfStyle", "rPr", "sectPr", "pPrChange",
	}
)

// SetText overwrites the text of el. Newlines in text start new paragraphs
// for paragraph, cell, table and comment elements and become line breaks
// inside runs and shapes.
func (d *Document) SetText(ctx context.Context, el docsel.Element, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := d.handle(el)
	if err != nil {
		return err
	}

	switch e.kind {
	case docsel.KindParagraph:
		setParagraphText(e.node, text)
	case docsel.KindRun:
		clearExcept(e.node, "rPr")
		for _, c := range runContent(text) {
			e.node.AddChild(c)
		}
	case docsel.KindInlineShape:
		run := e.node.Parent()
		at := e.node.Index()
		run.RemoveChild(e.node)
		for i, c := range runContent(text) {
			run.InsertChildAt(at+i, c)
		}
	case docsel.KindCell:
		fillBlocks(e.node, text, "tcPr")
	case docsel.KindComment:
		// Replies are threaded by the paragraph id of the comment's last
		// paragraph.
		var id string
		if ps := e.node.SelectElements("w:p"); len(ps) > 0 {
			id = ps[len(ps)-1].SelectAttrValue("w14:paraId", "")
		}
		fillBlocks(e.node, text)
		if ps := e.node.SelectElements("w:p"); id != "" && len(ps) > 0 {
			ps[len(ps)-1].CreateAttr("w14:paraId", id)
		}
	case docsel.KindTable:
		a := detachAnchors(e.node)
		parent := e.node.Parent()
		at := e.node.Index()
		parent.RemoveChild(e.node)
		var ps []*etree.Element
		for i, line := range lines(text) {
			q := newParagraph(nil, nil, line)
			parent.InsertChildAt(at+i, q)
			ps = append(ps, q)
		}
		a.restore(ps[0], ps[len(ps)-1])
	default:
		return docsel.Errorf(docsel.EINVALID, "cannot set text of %s", e.kind)
	}
	return nil
}

// InsertText inserts text at offset. The new runs copy the formatting of
// the character before offset. Newlines split the paragraph.
func (d *Document) InsertText(ctx context.Context, offset int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lay := d.layout()
	if offset < 0 || offset > lay.end() {
		return docsel.Errorf(docsel.EINVALID, "offset %d outside document range [0, %d]", offset, lay.end())
	}
	if text == "" {
		return nil
	}

	ls := lines(text)
	if offset == lay.end() {
		d.appendParagraphs(ls)
		return nil
	}

	p := lay.paragraphAt(offset)
	if p == nil {
		return docsel.Errorf(docsel.EINVALID, "offset %d is not inside a paragraph", offset)
	}
	container, at, rPr := boundaryAt(p, offset-p.rng.Start)
	if ls[0] != "" {
		container.InsertChildAt(at, newRun(rPr, ls[0]))
		at++
	}
	for _, line := range ls[1:] {
		q := splitAt(container, at)
		container, at = q, contentStart(q)
		if line != "" {
			q.InsertChildAt(at, newRun(rPr, line))
			at++
		}
	}
	return nil
}

// appendParagraphs adds one paragraph per line at the end of the body. A
// trailing newline does not produce an empty paragraph.
func (d *Document) appendParagraphs(ls []string) {
	if len(ls) > 1 && ls[len(ls)-1] == "" {
		ls = ls[:len(ls)-1]
	}
	body := d.body()
	at := len(body.Child)
	if sectPr := body.SelectElement("w:sectPr"); sectPr != nil {
		at = sectPr.Index()
	}
	for i, line := range ls {
		body.InsertChildAt(at+i, newParagraph(nil, nil, line))
	}
}

// Delete removes el. The last paragraph of a cell or of the body is
// emptied instead, and deleting a cell empties it.
func (d *Document) Delete(ctx context.Context, el docsel.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := d.handle(el)
	if err != nil {
		return err
	}

	switch e.kind {
	case docsel.KindParagraph:
		parent := e.node.Parent()
		if lastBlock(parent) {
			clearExcept(e.node, "pPr")
		} else {
			parent.RemoveChild(e.node)
		}
	case docsel.KindRun:
		e.node.Parent().RemoveChild(e.node)
	case docsel.KindTable:
		parent := e.node.Parent()
		parent.RemoveChild(e.node)
		if is(parent, "tc") && parent.SelectElement("w:p") == nil {
			parent.AddChild(etree.NewElement("w:p"))
		}
	case docsel.KindCell:
		fillBlocks(e.node, "", "tcPr")
	case docsel.KindInlineShape:
		run := e.node.Parent()
		run.RemoveChild(e.node)
		if !hasContent(run) {
			run.Parent().RemoveChild(run)
		}
	case docsel.KindComment:
		d.deleteComment(e.node)
	default:
		return docsel.Errorf(docsel.EINVALID, "cannot delete %s", e.kind)
	}
	d.pruneComments()
	return nil
}

// deleteComment removes the comment, its range markers and references and
// its reply threading entries.
func (d *Document) deleteComment(c *etree.Element) {
	id := c.SelectAttrValue("w:id", "")
	d.dropCommentEx(c)
	c.Parent().RemoveChild(c)

	body := d.body()
	for _, tag := range []string{"commentRangeStart", "commentRangeEnd"} {
		for _, marker := range body.FindElements(".//w:" + tag) {
			if marker.SelectAttrValue("w:id", "") == id {
				marker.Parent().RemoveChild(marker)
			}
		}
	}
	for _, ref := range body.FindElements(".//w:commentReference") {
		if ref.SelectAttrValue("w:id", "") != id {
			continue
		}
		run := ref.Parent()
		run.RemoveChild(ref)
		if is(run, "r") && !hasContent(run) {
			run.Parent().RemoveChild(run)
		}
	}
}

// SetFormat applies every set attribute of f. Character attributes go to
// the runs of el; alignment and paragraph style go to its paragraphs.
func (d *Document) SetFormat(ctx context.Context, el docsel.Element, f docsel.Format) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := d.handle(el)
	if err != nil {
		return err
	}

	var styleID string
	if f.ParagraphStyle != nil {
		id, ok := d.styles.id(*f.ParagraphStyle)
		if !ok {
			return docsel.Errorf(docsel.EINVALID, "unknown paragraph style %q", *f.ParagraphStyle)
		}
		styleID = id
	}

	if hasRunFormat(f) {
		for _, r := range formatRuns(e) {
			applyRunFormat(r, f)
		}
	}
	if f.Alignment != nil || f.ParagraphStyle != nil {
		for _, p := range formatParagraphs(e) {
			applyParagraphFormat(p, f, styleID)
		}
	}
	return nil
}

func hasRunFormat(f docsel.Format) bool {
	return f.Bold != nil || f.Italic != nil || f.Underline != nil ||
		f.FontSize != nil || f.FontName != nil || f.FontColor != nil
}

func formatRuns(e *element) []*etree.Element {
	switch e.kind {
	case docsel.KindRun:
		return []*etree.Element{e.node}
	case docsel.KindInlineShape:
		return []*etree.Element{e.node.Parent()}
	}
	return e.node.FindElements(".//w:r")
}

func formatParagraphs(e *element) []*etree.Element {
	switch e.kind {
	case docsel.KindParagraph:
		return []*etree.Element{e.node}
	case docsel.KindRun, docsel.KindInlineShape:
		if p := ancestor(e.node, "p"); p != nil {
			return []*etree.Element{p}
		}
		return nil
	}
	return e.node.FindElements(".//w:p")
}

func applyRunFormat(r *etree.Element, f docsel.Format) {
	rPr := ensureFirst(r, "rPr")
	if f.Bold != nil {
		setOnOff(property(rPr, "b", runPropertyOrder), *f.Bold)
	}
	if f.Italic != nil {
		setOnOff(property(rPr, "i", runPropertyOrder), *f.Italic)
	}
	if f.Underline != nil {
		val := "none"
		if *f.Underline {
			val = "single"
		}
		property(rPr, "u", runPropertyOrder).CreateAttr("w:val", val)
	}
	if f.FontSize != nil {
		half := strconv.Itoa(int(math.Round(*f.FontSize * 2)))
		property(rPr, "sz", runPropertyOrder).CreateAttr("w:val", half)
		property(rPr, "szCs", runPropertyOrder).CreateAttr("w:val", half)
	}
	if f.FontName != nil {
		fonts := property(rPr, "rFonts", runPropertyOrder)
		for _, key := range []string{"w:ascii", "w:hAnsi", "w:cs", "w:eastAsia"} {
			fonts.CreateAttr(key, *f.FontName)
		}
	}
	if f.FontColor != nil {
		property(rPr, "color", runPropertyOrder).CreateAttr("w:val", *f.FontColor)
	}
}

func applyParagraphFormat(p *etree.Element, f docsel.Format, styleID string) {
	pPr := ensureFirst(p, "pPr")
	if f.ParagraphStyle != nil {
		property(pPr, "pStyle", paragraphPropertyOrder).CreateAttr("w:val", styleID)
	}
	if f.Alignment != nil {
		val := string(*f.Alignment)
		if *f.Alignment == docsel.AlignJustify {
			val = "both"
		}
		property(pPr, "jc", paragraphPropertyOrder).CreateAttr("w:val", val)
	}
}

// boundaryAt prepares an insertion point before the k-th character of
// paragraph p, splitting text and runs as needed. It returns the container
// and child index to insert at and the run properties to copy.
func boundaryAt(p *element, k int) (*etree.Element, int, *etree.Element) {
	segs := p.segments

	var rPr *etree.Element
	for i, s := range segs {
		if s.start < k || i == 0 {
			rPr = s.run.SelectElement("w:rPr")
		}
	}
	if len(segs) == 0 {
		rPr = firstRunProperties(p.node)
	}

	i := slices.IndexFunc(segs, func(s segment) bool {
		return s.start <= k && k < s.start+s.size
	})
	if i < 0 {
		if len(segs) == 0 {
			return p.node, len(p.node.Child), rPr
		}
		last := segs[len(segs)-1].run
		return last.Parent(), last.Index() + 1, rPr
	}

	s := segs[i]
	run, child := s.run, s.child
	if k > s.start {
		runes := []rune(child.Text())
		cut := k - s.start
		child.SetText(string(runes[:cut]))
		preserveSpace(child)
		tail := newText(string(runes[cut:]))
		run.InsertChildAt(child.Index()+1, tail)
		child = tail
	}
	if firstContent(run) == child {
		return run.Parent(), run.Index(), rPr
	}

	split := etree.NewElement("w:r")
	if props := run.SelectElement("w:rPr"); props != nil {
		split.AddChild(props.Copy())
	}
	for _, tok := range slices.Clone(run.Child[child.Index():]) {
		split.AddChild(tok)
	}
	run.Parent().InsertChildAt(run.Index()+1, split)
	return split.Parent(), split.Index(), rPr
}

// splitAt moves the children of node from index on into a copy of node
// placed right after it, repeating upwards until the enclosing paragraph
// is split. It returns the new paragraph.
func splitAt(node *etree.Element, index int) *etree.Element {
	for {
		clone := etree.NewElement(node.FullTag())
		for _, a := range node.Attr {
			clone.CreateAttr(a.FullKey(), a.Value)
		}
		if is(node, "p") {
			if pPr := node.SelectElement("w:pPr"); pPr != nil {
				clone.AddChild(pPr.Copy())
			}
		}
		if index < len(node.Child) {
			for _, tok := range slices.Clone(node.Child[index:]) {
				clone.AddChild(tok)
			}
		}
		parent := node.Parent()
		parent.InsertChildAt(node.Index()+1, clone)
		if is(node, "p") {
			return clone
		}
		node, index = parent, clone.Index()
	}
}

// contentStart returns the index of the first content slot of a paragraph.
func contentStart(p *etree.Element) int {
	if pPr := p.SelectElement("w:pPr"); pPr != nil {
		return pPr.Index() + 1
	}
	return 0
}

// setParagraphText rewrites p, adding a paragraph for every further line.
// Comments anchored in p stay anchored around the new text.
func setParagraphText(p *etree.Element, text string) {
	rPr := firstRunProperties(p)
	pPr := p.SelectElement("w:pPr")
	a := detachAnchors(p)
	clearExcept(p, "pPr")

	ls := lines(text)
	if ls[0] != "" {
		p.AddChild(newRun(rPr, ls[0]))
	}
	parent := p.Parent()
	at := p.Index()
	last := p
	for i, line := range ls[1:] {
		last = newParagraph(pPr, rPr, line)
		parent.InsertChildAt(at+1+i, last)
	}
	a.restore(p, last)
}

// fillBlocks replaces the block content of container with one paragraph
// per line, formatted like its first paragraph. Children named in keep
// stay in place, and so do comment anchors.
func fillBlocks(container *etree.Element, text string, keep ...string) {
	pPr := container.FindElement("w:p/w:pPr")
	rPr := firstRunProperties(container)
	a := detachAnchors(container)
	clearExcept(container, keep...)
	var ps []*etree.Element
	for _, line := range lines(text) {
		q := newParagraph(pPr, rPr, line)
		container.AddChild(q)
		ps = append(ps, q)
	}
	a.restore(ps[0], ps[len(ps)-1])
}

// lastBlock reports whether container holds a single block-level element
// that must not be removed.
func lastBlock(container *etree.Element) bool {
	switch {
	case is(container, "tc"):
		return len(container.SelectElements("w:p")) == 1
	case is(container, "body"):
		return len(container.SelectElements("w:p"))+len(container.SelectElements("w:tbl")) == 1
	}
	return false
}

func newParagraph(pPr, rPr *etree.Element, text string) *etree.Element {
	p := etree.NewElement("w:p")
	if pPr != nil {
		p.AddChild(pPr.Copy())
	}
	if text != "" {
		p.AddChild(newRun(rPr, text))
	}
	return p
}

func newRun(rPr *etree.Element, text string) *etree.Element {
	r := etree.NewElement("w:r")
	if rPr != nil {
		r.AddChild(rPr.Copy())
	}
	for _, c := range runContent(text) {
		r.AddChild(c)
	}
	return r
}

// runContent renders text as run children: w:t for text, w:tab for tabs
// and w:br for line breaks.
func runContent(text string) []*etree.Element {
	var out []*etree.Element
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, newText(buf.String()))
			buf.Reset()
		}
	}
	for _, r := range text {
		switch r {
		case '\t':
			flush()
			out = append(out, etree.NewElement("w:tab"))
		case '\v', '\n', '\r':
			flush()
			out = append(out, etree.NewElement("w:br"))
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	return out
}

func newText(s string) *etree.Element {
	t := etree.NewElement("w:t")
	t.SetText(s)
	preserveSpace(t)
	return t
}

// preserveSpace marks w:t elements whose text has significant whitespace.
func preserveSpace(t *etree.Element) {
	if s := t.Text(); strings.TrimSpace(s) != s {
		t.CreateAttr("xml:space", "preserve")
	}
}

// lines splits text into paragraphs on "\n", "\r\n" and "\r".
func lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func firstRunProperties(el *etree.Element) *etree.Element {
	return el.FindElement(".//w:r/w:rPr")
}

func clearExcept(el *etree.Element, keep ...string) {
	for i := len(el.Child) - 1; i >= 0; i-- {
		if c, ok := el.Child[i].(*etree.Element); ok && c.Space == "w" && slices.Contains(keep, c.Tag) {
			continue
		}
		el.RemoveChildAt(i)
	}
}

func hasContent(run *etree.Element) bool {
	for _, c := range run.ChildElements() {
		if !is(c, "rPr") {
			return true
		}
	}
	return false
}

func firstContent(run *etree.Element) *etree.Element {
	for _, c := range run.ChildElements() {
		if !is(c, "rPr") {
			return c
		}
	}
	return nil
}

func ancestor(el *etree.Element, tag string) *etree.Element {
	for e := el.Parent(); e != nil; e = e.Parent() {
		if is(e, tag) {
			return e
		}
	}
	return nil
}

// ensureFirst returns the w:tag child of el, creating it as the first child.
func ensureFirst(el *etree.Element, tag string) *etree.Element {
	if c := el.SelectElement("w:" + tag); c != nil {
		return c
	}
	c := etree.NewElement("w:" + tag)
	el.InsertChildAt(0, c)
	return c
}

// property returns the w:tag child of parent, creating it at the position
// order prescribes.
func property(parent *etree.Element, tag string, order []string) *etree.Element {
	if c := parent.SelectElement("w:" + tag); c != nil {
		return c
	}
	c := etree.NewElement("w:" + tag)
	rank := slices.Index(order, tag)
	for _, sib := range parent.ChildElements() {
		if slices.Index(order, sib.Tag) > rank {
			parent.InsertChildAt(sib.Index(), c)
			return c
		}
	}
	parent.AddChild(c)
	return c
}

func setOnOff(el *etree.Element, on bool) {
	if on {
		el.RemoveAttr("w:val")
		return
	}
	el.CreateAttr("w:val", "0")
}
