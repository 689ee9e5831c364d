package htmltomarkdown

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docsel"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Exporter implements docsel.Exporter.
var _ docsel.Exporter = (*Exporter)(nil)

// Exporter renders selections as HTML and converts the result to Markdown.
type Exporter struct {
	conv docsel.Converter
}

// NewExporter creates an Exporter that converts through conv.
func NewExporter(conv docsel.Converter) *Exporter {
	return &Exporter{conv: conv}
}

// Export renders sel as Markdown.
func (e *Exporter) Export(sel *docsel.Selection) (string, error) {
	out, err := HTML(sel)
	if err != nil {
		return "", err
	}
	return e.conv.Convert(out)
}

// HTML renders the elements of sel as an HTML document. Headings become
// h1 to h6, list paragraphs are grouped into ul elements, tables keep their
// rows and cells, and bold paragraphs and runs are wrapped in strong.
func HTML(sel *docsel.Selection) (string, error) {
	body := node(atom.Body)
	r := renderer{body: body}
	for _, el := range sel.Elements() {
		r.render(el)
	}

	doc := &html.Node{Type: html.DocumentNode}
	root := node(atom.Html)
	root.AppendChild(body)
	doc.AppendChild(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", docsel.Errorf(docsel.EINTERNAL, "render html: %v", err)
	}
	return buf.String(), nil
}

type renderer struct {
	body *html.Node

	// list is the open ul while consecutive list paragraphs are rendered.
	list *html.Node
	// line is the open p while adjacent runs are rendered.
	line    *html.Node
	lineEnd int
}

func (r *renderer) render(el docsel.Element) {
	if el.Kind() != docsel.KindRun {
		r.line = nil
	}
	if el.Kind() != docsel.KindParagraph || el.ListString() == "" {
		r.list = nil
	}

	switch el.Kind() {
	case docsel.KindParagraph:
		r.paragraph(el)
	case docsel.KindTable:
		r.body.AppendChild(table(el.Text()))
	case docsel.KindRun:
		r.run(el)
	case docsel.KindInlineShape:
		p := node(atom.P)
		em := node(atom.Em)
		appendText(em, el.ShapeType())
		p.AppendChild(em)
		r.body.AppendChild(p)
	case docsel.KindComment:
		q := node(atom.Blockquote)
		q.AppendChild(block(atom.P, el.Text()))
		r.body.AppendChild(q)
	default:
		r.body.AppendChild(block(atom.P, el.Text()))
	}
}

func (r *renderer) paragraph(el docsel.Element) {
	text := strings.TrimSuffix(el.Text(), "\r")
	if level, ok := docsel.HeadingLevel(el.StyleName()); ok {
		r.body.AppendChild(block(headingAtoms[min(level, len(headingAtoms))-1], text))
		return
	}
	if el.ListString() != "" {
		if r.list == nil {
			r.list = node(atom.Ul)
			r.body.AppendChild(r.list)
		}
		r.list.AppendChild(block(atom.Li, text))
		return
	}
	p := node(atom.P)
	appendText(bolded(p, el), text)
	r.body.AppendChild(p)
}

func (r *renderer) run(el docsel.Element) {
	rng := el.Range()
	if r.line == nil || r.lineEnd != rng.Start {
		r.line = node(atom.P)
		r.body.AppendChild(r.line)
	}
	r.lineEnd = rng.End
	appendText(bolded(r.line, el), el.Text())
}

var headingAtoms = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// table rebuilds a table from its rendered text: cells separated by tabs,
// rows terminated by paragraph marks. The first row becomes the header.
func table(text string) *html.Node {
	t := node(atom.Table)
	head, body := node(atom.Thead), node(atom.Tbody)
	t.AppendChild(head)
	for i, row := range strings.Split(strings.TrimSuffix(text, "\r"), "\r") {
		tr := node(atom.Tr)
		cell, section := atom.Td, body
		if i == 0 {
			cell, section = atom.Th, head
		}
		for _, c := range strings.Split(row, "\t") {
			tr.AppendChild(block(cell, c))
		}
		section.AppendChild(tr)
	}
	if body.FirstChild != nil {
		t.AppendChild(body)
	}
	return t
}

// bolded returns the node text for el should be appended to, adding a strong
// element under parent when el is bold.
func bolded(parent *html.Node, el docsel.Element) *html.Node {
	if bold, ok := el.Bold(); ok && bold {
		strong := node(atom.Strong)
		parent.AppendChild(strong)
		return strong
	}
	return parent
}

func block(a atom.Atom, text string) *html.Node {
	n := node(a)
	appendText(n, text)
	return n
}

// appendText appends text to n with line breaks and paragraph marks as br
// elements.
func appendText(n *html.Node, text string) {
	text = strings.ReplaceAll(text, "\r", "\v")
	for i, line := range strings.Split(text, "\v") {
		if i > 0 {
			n.AppendChild(node(atom.Br))
		}
		if line != "" {
			n.AppendChild(&html.Node{Type: html.TextNode, Data: line})
		}
	}
}

func node(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}
