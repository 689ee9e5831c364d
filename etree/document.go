// Package etree implements docsel.Backend over WordprocessingML (.docx)
// packages using github.com/beevik/etree.
//
// The document's linear text stream follows word processor conventions:
// every paragraph ends with a "\r" mark, tabs render as "\t", manual line
// breaks as "\v" and inline objects as a single "/" character. Offsets
// count Unicode code points.
package etree

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/docsel"
)

// Part names within a WordprocessingML package.
const (
	MainPart     = "word/document.xml"
	StylesPart   = "word/styles.xml"
	CommentsPart = "word/comments.xml"
)

// part is one entry of the package. XML parts the backend reads are kept
// parsed; all others are carried through untouched.
type part struct {
	name     string
	method   uint16
	modified time.Time
	data     []byte
	doc      *etree.Document
}

func (p *part) bytes() ([]byte, error) {
	if p.doc == nil {
		return p.data, nil
	}
	return p.doc.WriteToBytes()
}

// Document is a WordprocessingML package loaded into memory.
// It is not safe for concurrent use.
type Document struct {
	parts    []*part
	main     *part
	comments *part
	styles   *styleSheet
}

var _ docsel.Backend = (*Document)(nil)

// Open reads the .docx package at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse reads a .docx package from memory.
func Parse(data []byte) (*Document, error) {
	return Load(bytes.NewReader(data), int64(len(data)))
}

// Load reads a .docx package of the given size from r.
func Load(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, docsel.Errorf(docsel.EINVALID, "not a docx package: %v", err)
	}

	d := &Document{}
	var stylesDoc *etree.Document
	for _, f := range zr.File {
		data, err := readFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		p := &part{name: f.Name, method: f.Method, modified: f.Modified, data: data}
		switch f.Name {
		case MainPart, StylesPart, CommentsPart:
			p.doc = etree.NewDocument()
			if err := p.doc.ReadFromBytes(data); err != nil {
				return nil, docsel.Errorf(docsel.EINVALID, "parse %s: %v", f.Name, err)
			}
			p.data = nil
		}
		switch f.Name {
		case MainPart:
			d.main = p
		case StylesPart:
			stylesDoc = p.doc
		case CommentsPart:
			d.comments = p
		}
		d.parts = append(d.parts, p)
	}
	if d.main == nil || d.body() == nil {
		return nil, docsel.Errorf(docsel.EINVALID, "not a docx package: missing %s", MainPart)
	}
	d.styles = parseStyles(stylesDoc)
	return d, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Bytes serializes the package, including every modification.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the package to w in its original part order.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, p := range d.parts {
		data, err := p.bytes()
		if err != nil {
			return cw.n, fmt.Errorf("serialize %s: %w", p.name, err)
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   p.method,
			Modified: p.modified,
		})
		if err != nil {
			return cw.n, err
		}
		if _, err := fw.Write(data); err != nil {
			return cw.n, err
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// body returns the w:body element of the main part.
func (d *Document) body() *etree.Element {
	root := d.main.doc.Root()
	if root == nil {
		return nil
	}
	return root.SelectElement("w:body")
}

// attached reports whether el is still part of one of the document's parts.
func (d *Document) attached(el *etree.Element) bool {
	var top *etree.Element
	for e := el; e != nil; e = e.Parent() {
		top = e
	}
	if top == &d.main.doc.Element {
		return true
	}
	return d.comments != nil && top == &d.comments.doc.Element
}
