package etree_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/fwojciec/docsel"
	"github.com/fwojciec/docsel/etree"
	"github.com/stretchr/testify/require"
)

// reportBody lays out:
//
//	[0,17)    Heading 1 "Quarterly Report"
//	[17,40)   "Revenue grew strongly." with a bold middle run
//	[40,72)   3x2 table: Region/Sales, North/120, South/95
//	[72,85)   bold "Key findings"
//	[85,102)  list item "Margins improved"
//	[102,113) list item "Costs fell"
//	[113,129) "Last paragraph."
const reportBody = `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Quarterly Report</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t xml:space="preserve">Revenue grew </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>strongly</w:t></w:r><w:r><w:t>.</w:t></w:r></w:p>` +
	`<w:tbl>` +
	`<w:tr><w:tc><w:p><w:r><w:t>Region</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Sales</w:t></w:r></w:p></w:tc></w:tr>` +
	`<w:tr><w:tc><w:p><w:r><w:t>North</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>120</w:t></w:r></w:p></w:tc></w:tr>` +
	`<w:tr><w:tc><w:p><w:r><w:t>South</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>95</w:t></w:r></w:p></w:tc></w:tr>` +
	`</w:tbl>` +
	`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Key findings</w:t></w:r></w:p>` +
	`<w:p><w:pPr><w:pStyle w:val="ListBullet"/></w:pPr><w:r><w:t>Margins improved</w:t></w:r></w:p>` +
	`<w:p><w:pPr><w:pStyle w:val="ListBullet"/></w:pPr><w:r><w:t>Costs fell</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Last paragraph.</w:t></w:r></w:p>`

// shapesBody holds "See / chart /" with a picture at 4 and a chart at 12.
const shapesBody = `<w:p><w:r><w:t xml:space="preserve">See </w:t></w:r>` +
	`<w:r><w:drawing><wp:inline><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture"><pic:pic><pic:blipFill><a:blip r:embed="rId5"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>` +
	`<w:r><w:t xml:space="preserve"> chart </w:t></w:r>` +
	`<w:r><w:drawing><wp:inline><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/chart"/></a:graphic></wp:inline></w:drawing></w:r></w:p>`

// commentedBody attaches comment 0 to "Reviewed text" at [0,13).
const commentedBody = `<w:p><w:commentRangeStart w:id="0"/><w:r><w:t>Reviewed text</w:t></w:r><w:commentRangeEnd w:id="0"/>` +
	`<w:r><w:commentReference w:id="0"/></w:r></w:p>` +
	`<w:p><w:r><w:t>Other</w:t></w:r></w:p>`

const commentsXML = `<w:comment w:id="0" w:author="Reviewer"><w:p><w:r><w:t>Check numbers</w:t></w:r></w:p></w:comment>`

func mustDocument(t *testing.T, body string, opts ...etree.Option) *etree.Document {
	t.Helper()
	doc, err := etree.NewDocument(body, opts...)
	require.NoError(t, err)
	return doc
}

func elements(t *testing.T, doc *etree.Document, kind docsel.ElementKind) []docsel.Element {
	t.Helper()
	els, err := doc.Elements(context.Background(), kind)
	require.NoError(t, err)
	return els
}

func texts(els []docsel.Element) []string {
	out := make([]string, 0, len(els))
	for _, el := range els {
		out = append(out, el.Text())
	}
	return out
}

// partXML returns the serialized contents of a package part.
func partXML(t *testing.T, doc *etree.Document, name string) string {
	t.Helper()
	data, err := doc.Bytes()
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}
