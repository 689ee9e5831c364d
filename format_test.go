package docsel_test

import (
	"testing"

	"github.com/fwojciec/docsel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	t.Run("parses recognized keys", func(t *testing.T) {
		t.Parallel()

		f, err := docsel.ParseFormat(map[string]any{
			"bold":            true,
			"italic":          false,
			"underline":       true,
			"font_size":       14.5,
			"font_name":       "Arial",
			"font_color":      "#ff0000",
			"alignment":       "Center",
			"paragraph_style": "Quote",
		})

		require.NoError(t, err)
		assert.True(t, *f.Bold)
		assert.False(t, *f.Italic)
		assert.True(t, *f.Underline)
		assert.InDelta(t, 14.5, *f.FontSize, 0.001)
		assert.Equal(t, "Arial", *f.FontName)
		assert.Equal(t, "FF0000", *f.FontColor)
		assert.Equal(t, docsel.AlignCenter, *f.Alignment)
		assert.Equal(t, "Quote", *f.ParagraphStyle)
	})

	t.Run("ignores unknown keys", func(t *testing.T) {
		t.Parallel()

		f, err := docsel.ParseFormat(map[string]any{"sparkle": true})

		require.NoError(t, err)
		assert.True(t, f.IsZero())
	})

	t.Run("accepts integer font sizes", func(t *testing.T) {
		t.Parallel()

		f, err := docsel.ParseFormat(map[string]any{"font_size": 12})

		require.NoError(t, err)
		assert.InDelta(t, 12.0, *f.FontSize, 0.001)
	})

	t.Run("rejects values of the wrong type", func(t *testing.T) {
		t.Parallel()

		for _, options := range []map[string]any{
			{"bold": "yes"},
			{"font_size": "12"},
			{"font_size": -1.0},
			{"font_name": ""},
			{"font_color": "red"},
			{"alignment": "middle"},
			{"paragraph_style": 3},
		} {
			_, err := docsel.ParseFormat(options)
			assert.Equal(t, docsel.EINVALID, docsel.ErrorCode(err), "%v", options)
		}
	})
}

func TestFormat_String(t *testing.T) {
	t.Parallel()

	f, err := docsel.ParseFormat(map[string]any{
		"font_size":       11,
		"bold":            true,
		"paragraph_style": "Quote",
		"font_color":      "00ff00",
	})
	require.NoError(t, err)

	assert.Equal(t, `bold=true font_size=11 font_color=00FF00 paragraph_style="Quote"`, f.String())
	assert.Empty(t, docsel.Format{}.String())
}
