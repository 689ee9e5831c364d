package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/docsel"
	"github.com/fwojciec/docsel/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Converter implements docsel.Converter at compile time.
var _ docsel.Converter = (*htmltomarkdown.Converter)(nil)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts headings by level", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<h1>Quarterly Report</h1><h2>Revenue</h2>`)

		require.NoError(t, err)
		assert.Contains(t, md, "# Quarterly Report")
		assert.Contains(t, md, "## Revenue")
	})

	t.Run("converts bullet lists", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<ul><li>Margins improved</li><li>Costs fell</li></ul>`)

		require.NoError(t, err)
		assert.Contains(t, md, "- Margins improved")
		assert.Contains(t, md, "- Costs fell")
	})

	t.Run("converts tables with a header row", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<table><thead><tr><th>Region</th><th>Sales</th></tr></thead>` +
			`<tbody><tr><td>North</td><td>120</td></tr></tbody></table>`)

		require.NoError(t, err)
		assert.Contains(t, md, "Region")
		assert.Contains(t, md, "North")
		assert.Contains(t, md, "|")
		assert.Contains(t, md, "---")
	})

	t.Run("converts bold and italic", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<p><strong>Key</strong> and <em>minor</em> findings.</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "**Key**")
		assert.Contains(t, md, "*minor*")
	})

	t.Run("replaces Word spacing characters", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert("<p>10\u00a0km of re\u00adsearch</p>")

		require.NoError(t, err)
		assert.Equal(t, "10 km of research", md)
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		_, err := conv.Convert("  ")

		require.Error(t, err)
		assert.Equal(t, docsel.EINVALID, docsel.ErrorCode(err))
	})
}
