// Package htmltomarkdown renders selections as Markdown using
// github.com/JohannesKaufmann/html-to-markdown.
package htmltomarkdown

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	tableplugin "github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/docsel"
)

// Ensure Converter implements docsel.Converter at compile time.
var _ docsel.Converter = (*Converter)(nil)

// wordSpacing maps characters Word documents carry in running text to their
// plain Markdown equivalents.
var wordSpacing = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u00ad", "", // soft hyphen
	"\u2011", "-", // non-breaking hyphen
	"\u200b", "", // zero width space
)

// Converter turns the HTML rendering of a selection into Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a Converter producing ATX headings and pipe tables.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle(commonmark.HeadingStyleATX),
			),
			tableplugin.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", docsel.Errorf(docsel.EINVALID, "empty HTML input")
	}

	md, err := c.conv.ConvertString(wordSpacing.Replace(html))
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return strings.TrimSpace(md), nil
}
