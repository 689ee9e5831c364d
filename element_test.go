package docsel_test

import (
	"testing"

	"github.com/fwojciec/docsel"
	"github.com/stretchr/testify/assert"
)

func TestParseElementKind(t *testing.T) {
	t.Parallel()

	t.Run("accepts canonical kinds", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"paragraph", "table", "cell", "run", "inline_shape", "comment", "heading"} {
			kind, ok := docsel.ParseElementKind(name)
			assert.True(t, ok, name)
			assert.Equal(t, docsel.ElementKind(name), kind)
		}
	})

	t.Run("maps image to inline_shape", func(t *testing.T) {
		t.Parallel()

		kind, ok := docsel.ParseElementKind("image")

		assert.True(t, ok)
		assert.Equal(t, docsel.KindInlineShape, kind)
	})

	t.Run("maps document_start and document_end to pseudo kinds", func(t *testing.T) {
		t.Parallel()

		start, ok := docsel.ParseElementKind("document_start")
		assert.True(t, ok)
		assert.Equal(t, docsel.KindStartOfDocument, start)
		assert.True(t, start.IsPseudo())

		end, ok := docsel.ParseElementKind("document_end")
		assert.True(t, ok)
		assert.Equal(t, docsel.KindEndOfDocument, end)
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		t.Parallel()

		_, ok := docsel.ParseElementKind("section")

		assert.False(t, ok)
	})
}

func TestRange(t *testing.T) {
	t.Parallel()

	t.Run("contains nested ranges", func(t *testing.T) {
		t.Parallel()

		outer := docsel.Range{Start: 10, End: 20}

		assert.True(t, outer.Contains(docsel.Range{Start: 10, End: 20}))
		assert.True(t, outer.Contains(docsel.Range{Start: 12, End: 15}))
		assert.False(t, outer.Contains(docsel.Range{Start: 5, End: 15}))
		assert.False(t, outer.Contains(docsel.Range{Start: 15, End: 21}))
	})

	t.Run("overlap excludes touching ranges", func(t *testing.T) {
		t.Parallel()

		r := docsel.Range{Start: 10, End: 20}

		assert.True(t, r.Overlaps(docsel.Range{Start: 19, End: 30}))
		assert.True(t, r.Overlaps(docsel.Range{Start: 0, End: 11}))
		assert.False(t, r.Overlaps(docsel.Range{Start: 20, End: 30}))
		assert.False(t, r.Overlaps(docsel.Range{Start: 0, End: 10}))
	})

	t.Run("zero-width range overlaps the range covering its position", func(t *testing.T) {
		t.Parallel()

		point := docsel.Range{Start: 10, End: 10}

		assert.True(t, point.Overlaps(docsel.Range{Start: 10, End: 15}))
		assert.True(t, point.Overlaps(docsel.Range{Start: 5, End: 15}))
		assert.False(t, point.Overlaps(docsel.Range{Start: 5, End: 10}))
		assert.True(t, docsel.Range{Start: 5, End: 15}.Overlaps(point))
	})

	t.Run("reports its length", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 7, docsel.Range{Start: 3, End: 10}.Len())
	})
}
