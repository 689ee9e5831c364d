package etree

import (
	"archive/zip"
	"context"
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/docsel"
	"github.com/google/uuid"
)

// Package parts and relationships comment authoring touches.
const (
	CommentsExtendedPart = "word/commentsExtended.xml"
	contentTypesPart     = "[Content_Types].xml"
	documentRelsPart     = "word/_rels/document.xml.rels"

	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	w14Namespace  = "http://schemas.microsoft.com/office/word/2010/wordml"
	w15Namespace  = "http://schemas.microsoft.com/office/word/2012/wordml"

	commentsRelType         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	commentsExtendedRelType = "http://schemas.microsoft.com/office/2011/relationships/commentsExtended"
	commentsContentType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"
	commentsExContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.commentsExtended+xml"
)

// commentDate is the w:date layout Word writes.
const commentDate = "2006-01-02T15:04:05Z"

const xmlDeclaration = `version="1.0" encoding="UTF-8" standalone="yes"`

// AddComment attaches a new comment to the text in r. A range ending on a
// paragraph boundary is anchored after the last run of the paragraph before.
func (d *Document) AddComment(ctx context.Context, r docsel.Range, c docsel.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lay := d.layout()
	if r.Start < 0 || r.End < r.Start || r.End > lay.end() {
		return docsel.Errorf(docsel.EINVALID, "range [%d, %d) outside document range [0, %d]", r.Start, r.End, lay.end())
	}
	end := r.End
	if end > r.Start && string(lay.stream[end-1]) == paragraphMark {
		end--
	}
	if end == lay.end() {
		end--
	}
	start := min(r.Start, end)
	if end < 0 || lay.paragraphAt(end) == nil {
		return docsel.Errorf(docsel.EINVALID, "cannot comment on an empty document")
	}

	root, err := d.commentsRoot()
	if err != nil {
		return err
	}
	id := strconv.Itoa(d.nextCommentID())
	root.AddChild(newComment(id, c))

	// The end goes in first; placing it never moves text before it.
	p := lay.paragraphAt(end)
	container, at, _ := boundaryAt(p, end-p.rng.Start)
	container.InsertChildAt(at, marker("commentRangeEnd", id))
	container.InsertChildAt(at+1, referenceRun(id))

	lay = d.layout()
	p = lay.paragraphAt(start)
	container, at, _ = boundaryAt(p, start-p.rng.Start)
	container.InsertChildAt(at, marker("commentRangeStart", id))
	return nil
}

// ReplyToComment adds a reply to the comment element parent. The reply
// shares the parent's anchor and is threaded under it in the
// commentsExtended part. Replies to replies join the thread of the root
// comment.
func (d *Document) ReplyToComment(ctx context.Context, parent docsel.Element, c docsel.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := d.handle(parent)
	if err != nil {
		return err
	}
	if e.kind != docsel.KindComment {
		return docsel.Errorf(docsel.EINVALID, "can only reply to comments, got %s", e.kind)
	}

	root, err := d.commentsRoot()
	if err != nil {
		return err
	}
	parentID := e.node.SelectAttrValue("w:id", "")
	id := strconv.Itoa(d.nextCommentID())
	reply := newComment(id, c)
	root.InsertChildAt(e.node.Index()+1, reply)
	d.anchorReply(parentID, id)

	ex, err := d.commentsExtended()
	if err != nil {
		return err
	}
	if root.SelectAttr("xmlns:w14") == nil {
		root.CreateAttr("xmlns:w14", w14Namespace)
	}
	parentPara := paraID(e.node)
	entry := commentEx(ex, parentPara)
	if entry == nil {
		entry = ex.CreateElement("w15:commentEx")
		entry.CreateAttr("w15:paraId", parentPara)
		entry.CreateAttr("w15:done", "0")
	}
	if thread := entry.SelectAttrValue("w15:paraIdParent", ""); thread != "" {
		parentPara = thread
	}
	replyEntry := ex.CreateElement("w15:commentEx")
	replyEntry.CreateAttr("w15:paraId", paraID(reply))
	replyEntry.CreateAttr("w15:paraIdParent", parentPara)
	replyEntry.CreateAttr("w15:done", "0")
	return nil
}

// anchorReply places the markers of comment id next to those of parentID.
func (d *Document) anchorReply(parentID, id string) {
	body := d.body()
	find := func(tag string) *etree.Element {
		for _, m := range body.FindElements(".//w:" + tag) {
			if m.SelectAttrValue("w:id", "") == parentID {
				return m
			}
		}
		return nil
	}
	if start := find("commentRangeStart"); start != nil {
		start.Parent().InsertChildAt(start.Index()+1, marker("commentRangeStart", id))
	}

	after := find("commentRangeEnd")
	if ref := find("commentReference"); ref != nil && is(ref.Parent(), "r") {
		after = ref.Parent()
	}
	if after == nil {
		return
	}
	at := after.Index() + 1
	after.Parent().InsertChildAt(at, marker("commentRangeEnd", id))
	after.Parent().InsertChildAt(at+1, referenceRun(id))
}

// commentsRoot returns the w:comments element, creating the comments part
// and registering it with the package when the document has none.
func (d *Document) commentsRoot() (*etree.Element, error) {
	if d.comments != nil && d.comments.doc.Root() != nil {
		return d.comments.doc.Root(), nil
	}
	p, err := d.xmlPart(CommentsPart, func(doc *etree.Document) {
		doc.CreateElement("w:comments").CreateAttr("xmlns:w", wordNamespace)
	})
	if err != nil {
		return nil, err
	}
	d.comments = p
	if err := d.register(CommentsPart, commentsRelType, commentsContentType); err != nil {
		return nil, err
	}
	return p.doc.Root(), nil
}

// commentsExtended returns the w15:commentsEx element that threads replies.
func (d *Document) commentsExtended() (*etree.Element, error) {
	p, err := d.xmlPart(CommentsExtendedPart, func(doc *etree.Document) {
		root := doc.CreateElement("w15:commentsEx")
		root.CreateAttr("xmlns:w15", w15Namespace)
	})
	if err != nil {
		return nil, err
	}
	if err := d.register(CommentsExtendedPart, commentsExtendedRelType, commentsExContentType); err != nil {
		return nil, err
	}
	return p.doc.Root(), nil
}

// register adds the relationship from the main part and the content type
// override for name unless the package already declares them.
func (d *Document) register(name, relType, contentType string) error {
	rels, err := d.xmlPart(documentRelsPart, func(doc *etree.Document) {
		doc.CreateElement("Relationships").CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")
	})
	if err != nil {
		return err
	}
	root := rels.doc.Root()
	next := 1
	declared := false
	for _, rel := range root.SelectElements("Relationship") {
		if rel.SelectAttrValue("Type", "") == relType {
			declared = true
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.SelectAttrValue("Id", ""), "rId")); err == nil && n >= next {
			next = n + 1
		}
	}
	if !declared {
		rel := root.CreateElement("Relationship")
		rel.CreateAttr("Id", "rId"+strconv.Itoa(next))
		rel.CreateAttr("Type", relType)
		rel.CreateAttr("Target", strings.TrimPrefix(name, "word/"))
	}

	types, err := d.xmlPart(contentTypesPart, func(doc *etree.Document) {
		doc.CreateElement("Types").CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")
	})
	if err != nil {
		return err
	}
	partName := "/" + name
	for _, o := range types.doc.Root().SelectElements("Override") {
		if o.SelectAttrValue("PartName", "") == partName {
			return nil
		}
	}
	o := types.doc.Root().CreateElement("Override")
	o.CreateAttr("PartName", partName)
	o.CreateAttr("ContentType", contentType)
	return nil
}

// xmlPart returns the parsed part called name. A missing part is created
// and filled by create.
func (d *Document) xmlPart(name string, create func(*etree.Document)) (*part, error) {
	i := slices.IndexFunc(d.parts, func(p *part) bool { return p.name == name })
	if i < 0 {
		doc := etree.NewDocument()
		doc.CreateProcInst("xml", xmlDeclaration)
		create(doc)
		p := &part{name: name, method: zip.Deflate, modified: time.Now(), doc: doc}
		d.parts = append(d.parts, p)
		return p, nil
	}
	p := d.parts[i]
	if p.doc == nil {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(p.data); err != nil {
			return nil, docsel.Errorf(docsel.EINVALID, "parse %s: %v", name, err)
		}
		p.doc, p.data = doc, nil
	}
	if p.doc.Root() == nil {
		create(p.doc)
	}
	return p, nil
}

// nextCommentID returns an id no comment or comment marker uses yet.
func (d *Document) nextCommentID() int {
	next := 0
	see := func(el *etree.Element) {
		if n, err := strconv.Atoi(el.SelectAttrValue("w:id", "")); err == nil && n >= next {
			next = n + 1
		}
	}
	if d.comments != nil && d.comments.doc.Root() != nil {
		for _, c := range d.comments.doc.Root().SelectElements("w:comment") {
			see(c)
		}
	}
	for _, tag := range []string{"commentRangeStart", "commentRangeEnd", "commentReference"} {
		for _, m := range d.body().FindElements(".//w:" + tag) {
			see(m)
		}
	}
	return next
}

func newComment(id string, c docsel.Comment) *etree.Element {
	el := etree.NewElement("w:comment")
	el.CreateAttr("w:id", id)
	el.CreateAttr("w:author", c.Author)
	el.CreateAttr("w:date", time.Now().UTC().Format(commentDate))
	if c.Initials != "" {
		el.CreateAttr("w:initials", c.Initials)
	}
	for _, line := range lines(c.Text) {
		el.AddChild(newParagraph(nil, nil, line))
	}
	return el
}

func marker(tag, id string) *etree.Element {
	m := etree.NewElement("w:" + tag)
	m.CreateAttr("w:id", id)
	return m
}

func referenceRun(id string) *etree.Element {
	r := etree.NewElement("w:r")
	r.AddChild(marker("commentReference", id))
	return r
}

// paraID returns the w14:paraId of the last paragraph of comment c,
// assigning a fresh one when it has none.
func paraID(c *etree.Element) string {
	ps := c.SelectElements("w:p")
	if len(ps) == 0 {
		c.AddChild(etree.NewElement("w:p"))
		ps = c.SelectElements("w:p")
	}
	last := ps[len(ps)-1]
	if id := last.SelectAttrValue("w14:paraId", ""); id != "" {
		return id
	}
	u := uuid.New()
	id := fmt.Sprintf("%08X", binary.BigEndian.Uint32(u[:4])&0x7fffffff)
	last.CreateAttr("w14:paraId", id)
	return id
}

// commentEx returns the commentsEx entry for paragraph id, or nil.
func commentEx(root *etree.Element, id string) *etree.Element {
	for _, entry := range root.SelectElements("w15:commentEx") {
		if entry.SelectAttrValue("w15:paraId", "") == id {
			return entry
		}
	}
	return nil
}

// dropCommentEx removes the commentsEx entries of comment c's paragraphs.
func (d *Document) dropCommentEx(c *etree.Element) {
	i := slices.IndexFunc(d.parts, func(p *part) bool { return p.name == CommentsExtendedPart })
	if i < 0 {
		return
	}
	p, err := d.xmlPart(CommentsExtendedPart, func(*etree.Document) {})
	if err != nil || p.doc.Root() == nil {
		return
	}
	for _, para := range c.SelectElements("w:p") {
		id := para.SelectAttrValue("w14:paraId", "")
		if id == "" {
			continue
		}
		if entry := commentEx(p.doc.Root(), id); entry != nil {
			p.doc.Root().RemoveChild(entry)
		}
	}
}

// pruneComments removes comments whose anchors no longer appear in the body.
func (d *Document) pruneComments() {
	if d.comments == nil || d.comments.doc.Root() == nil {
		return
	}
	anchored := make(map[string]bool)
	for _, tag := range []string{"commentRangeStart", "commentRangeEnd", "commentReference"} {
		for _, m := range d.body().FindElements(".//w:" + tag) {
			anchored[m.SelectAttrValue("w:id", "")] = true
		}
	}
	for _, c := range d.comments.doc.Root().SelectElements("w:comment") {
		if !anchored[c.SelectAttrValue("w:id", "")] {
			d.deleteComment(c)
		}
	}
}

// anchors holds the comment markers of a block detached while its content
// is rewritten.
type anchors struct {
	starts []*etree.Element
	ends   []*etree.Element
}

// detachAnchors removes the comment range markers and comment reference
// runs below el, in document order.
func detachAnchors(el *etree.Element) anchors {
	var a anchors
	a.collect(el)
	return a
}

func (a *anchors) collect(el *etree.Element) {
	for _, c := range slices.Clone(el.ChildElements()) {
		switch {
		case is(c, "commentRangeStart"):
			el.RemoveChild(c)
			a.starts = append(a.starts, c)
		case is(c, "commentRangeEnd"):
			el.RemoveChild(c)
			a.ends = append(a.ends, c)
		case is(c, "r") && c.SelectElement("w:commentReference") != nil:
			ref := c.SelectElement("w:commentReference")
			c.RemoveChild(ref)
			run := etree.NewElement("w:r")
			run.AddChild(ref)
			a.ends = append(a.ends, run)
		default:
			a.collect(c)
		}
	}
}

// restore puts the range starts at the beginning of paragraph first and the
// range ends and references at the end of paragraph last.
func (a anchors) restore(first, last *etree.Element) {
	at := contentStart(first)
	for i, m := range a.starts {
		first.InsertChildAt(at+i, m)
	}
	for _, m := range a.ends {
		last.AddChild(m)
	}
}
