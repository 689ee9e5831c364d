package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docsel"
	"github.com/fwojciec/docsel/engine"
	"github.com/fwojciec/docsel/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture lays out:
//
//	[0,8)   Heading 1 "Title"
//	[8,21)  "Intro text."
//	[21,33) table 0 with cells [21,27) "A1" and [27,33) "B1"
//	[33,47) bold "Bold closing"
//	[47,52) "Tail"
type fixture struct {
	heading, intro, bold, tail *mock.Element
	table                      *mock.Element
	cellA, cellB               *mock.Element
	cellParaA, cellParaB       *mock.Element
	runs                       []*mock.Element
	backend                    *mock.Backend
}

func newFixture() *fixture {
	f := &fixture{}
	f.heading = &mock.Element{ElementKind: docsel.KindParagraph, Span: docsel.Range{Start: 0, End: 8}, Content: "Title\r", Style: "Heading 1", BoldState: mock.Bool(true)}
	f.intro = &mock.Element{ElementKind: docsel.KindParagraph, Span: docsel.Range{Start: 8, End: 21}, Content: "Intro text.\r", Style: "Normal", BoldState: mock.Bool(false)}
	f.table = &mock.Element{ElementKind: docsel.KindTable, Span: docsel.Range{Start: 21, End: 33}, Content: "A1\rB1\r"}
	f.cellA = &mock.Element{ElementKind: docsel.KindCell, Span: docsel.Range{Start: 21, End: 27}, Content: "A1\r", Position: &docsel.CellPosition{Row: 1, Column: 1}, ParentElement: f.table}
	f.cellB = &mock.Element{ElementKind: docsel.KindCell, Span: docsel.Range{Start: 27, End: 33}, Content: "B1\r", Position: &docsel.CellPosition{Row: 1, Column: 2}, ParentElement: f.table}
	f.cellParaA = &mock.Element{ElementKind: docsel.KindParagraph, Span: docsel.Range{Start: 21, End: 27}, Content: "A1\r", Style: "Normal", ParentElement: f.cellA}
	f.cellParaB = &mock.Element{ElementKind: docsel.KindParagraph, Span: docsel.Range{Start: 27, End: 33}, Content: "B1\r", Style: "Normal", ParentElement: f.cellB}
	f.bold = &mock.Element{ElementKind: docsel.KindParagraph, Span: docsel.Range{Start: 33, End: 47}, Content: "Bold closing\r", Style: "Normal", BoldState: mock.Bool(true)}
	f.tail = &mock.Element{ElementKind: docsel.KindParagraph, Span: docsel.Range{Start: 47, End: 52}, Content: "Tail\r", Style: "Normal", BoldState: mock.Bool(false)}
	f.runs = []*mock.Element{
		{ElementKind: docsel.KindRun, Span: docsel.Range{Start: 8, End: 14}, Content: "Intro ", ParentElement: f.intro},
		{ElementKind: docsel.KindRun, Span: docsel.Range{Start: 14, End: 20}, Content: "text.", ParentElement: f.intro},
	}
	f.backend = mock.NewBackend(
		f.heading, f.intro, f.table, f.cellA, f.cellB, f.cellParaA, f.cellParaB,
		f.bold, f.tail, f.runs[0], f.runs[1],
	)
	return f
}

func texts(sel *docsel.Selection) []string {
	out := []string{}
	for _, el := range sel.Elements() {
		out = append(out, el.Text())
	}
	return out
}

func paragraphLocator(filters ...docsel.Filter) *docsel.Locator {
	return &docsel.Locator{Target: &docsel.TargetSpec{Type: docsel.KindParagraph, Filters: filters}}
}

func TestEngine_Select(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns every paragraph in document order", func(t *testing.T) {
		t.Parallel()

		f := newFixture()

		sel, err := engine.New().Select(ctx, f.backend, paragraphLocator(), docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"Title\r", "Intro text.\r", "A1\r", "B1\r", "Bold closing\r", "Tail\r"}, texts(sel))
	})

	t.Run("orders unsorted backend output by start offset", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.backend.ElementsFn = func(context.Context, docsel.ElementKind) ([]docsel.Element, error) {
			return []docsel.Element{f.tail, f.intro, f.heading}, nil
		}

		sel, err := engine.New().Select(ctx, f.backend, paragraphLocator(), docsel.SelectOptions{})

		require.NoError(t, err)
		prev := -1
		for _, el := range sel.Elements() {
			assert.Greater(t, el.Range().Start, prev)
			prev = el.Range().Start
		}
	})

	t.Run("keeps backend order for equal starts", func(t *testing.T) {
		t.Parallel()

		a := &mock.Element{ElementKind: docsel.KindRun, Span: docsel.Range{Start: 5, End: 5}, Content: "a"}
		b := &mock.Element{ElementKind: docsel.KindRun, Span: docsel.Range{Start: 5, End: 6}, Content: "b"}
		backend := mock.NewBackend(a, b)

		sel, err := engine.New().Select(ctx, backend, &docsel.Locator{Target: &docsel.TargetSpec{Type: docsel.KindRun}}, docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, texts(sel))
	})

	t.Run("selects headings by style convention", func(t *testing.T) {
		t.Parallel()

		f := newFixture()

		sel, err := engine.New().Select(ctx, f.backend, &docsel.Locator{Target: &docsel.TargetSpec{Type: docsel.KindHeading}}, docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"Title\r"}, texts(sel))
	})

	t.Run("validates before touching the backend", func(t *testing.T) {
		t.Parallel()

		fail := func() { t.Error("backend must not be called") }
		backend := &mock.Backend{
			ElementsFn: func(context.Context, docsel.ElementKind) ([]docsel.Element, error) {
				fail()
				return nil, nil
			},
			ElementsInRangeFn: func(context.Context, docsel.ElementKind, docsel.Range) ([]docsel.Element, error) {
				fail()
				return nil, nil
			},
			DocumentRangeFn: func(context.Context) (docsel.Range, error) {
				fail()
				return docsel.Range{}, nil
			},
		}

		for _, loc := range []*docsel.Locator{
			{},
			{Target: &docsel.TargetSpec{Type: "section"}},
			{Target: &docsel.TargetSpec{Type: docsel.KindParagraph}, Anchor: &docsel.TargetSpec{Type: docsel.KindTable}},
			{Target: &docsel.TargetSpec{Type: docsel.KindParagraph}, Relation: docsel.RelationParentOf},
			{Target: &docsel.TargetSpec{Type: docsel.KindParagraph}, Anchor: &docsel.TargetSpec{Type: docsel.KindTable}, Relation: "beside"},
			paragraphLocator(docsel.Filter{Kind: "sparkle"}),
			paragraphLocator(docsel.ContainsText("x"), docsel.TextMatchesRegex("[")),
		} {
			_, err := engine.New().Select(ctx, backend, loc, docsel.SelectOptions{})
			assert.True(t, docsel.IsSyntaxError(err), "locator %v: %v", loc, err)
		}
	})

	t.Run("reports an empty result as not found", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		loc := paragraphLocator(docsel.ContainsText("zzz-nonexistent"))

		sel, err := engine.New().Select(ctx, f.backend, loc, docsel.SelectOptions{})

		assert.Nil(t, sel)
		require.True(t, docsel.IsNotFound(err))
		var e *docsel.Error
		require.ErrorAs(t, err, &e)
		assert.Same(t, loc, e.Spec)
	})

	t.Run("index_in_parent -1 on no candidates is not found", func(t *testing.T) {
		t.Parallel()

		backend := mock.NewBackend()

		_, err := engine.New().Select(ctx, backend, paragraphLocator(docsel.IndexInParent(-1)), docsel.SelectOptions{})

		assert.True(t, docsel.IsNotFound(err))
	})

	t.Run("reports multiple matches as ambiguous when a single one is expected", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		loc := paragraphLocator(docsel.IsBold(false))

		_, err := engine.New().Select(ctx, f.backend, loc, docsel.SelectOptions{ExpectSingle: true})

		require.True(t, docsel.IsAmbiguous(err))
		var e *docsel.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 2, e.Count)
	})

	t.Run("returns multiple matches without ExpectSingle", func(t *testing.T) {
		t.Parallel()

		f := newFixture()

		sel, err := engine.New().Select(ctx, f.backend, paragraphLocator(docsel.IsBold(false)), docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, 2, sel.Len())
	})

	t.Run("propagates backend failures unchanged", func(t *testing.T) {
		t.Parallel()

		errBackend := errors.New("no document open")
		backend := &mock.Backend{
			ElementsFn: func(context.Context, docsel.ElementKind) ([]docsel.Element, error) {
				return nil, errBackend
			},
		}

		_, err := engine.New().Select(ctx, backend, paragraphLocator(), docsel.SelectOptions{})

		assert.Same(t, errBackend, err)
		assert.Equal(t, docsel.EINTERNAL, docsel.ErrorCode(err))
	})
}

func TestEngine_Select_Relations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	relative := func(anchor *docsel.TargetSpec, rel docsel.Relation, target docsel.ElementKind, filters ...docsel.Filter) *docsel.Locator {
		return &docsel.Locator{
			Target:   &docsel.TargetSpec{Type: target, Filters: filters},
			Anchor:   anchor,
			Relation: rel,
		}
	}
	tableAnchor := &docsel.TargetSpec{Type: docsel.KindTable, Filters: []docsel.Filter{docsel.IndexInParent(0)}}

	t.Run("all_occurrences_within scopes paragraphs to the anchor", func(t *testing.T) {
		t.Parallel()

		f := newFixture()

		sel, err := engine.New().Select(ctx, f.backend, relative(tableAnchor, docsel.RelationAllOccurrencesWithin, docsel.KindParagraph), docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"A1\r", "B1\r"}, texts(sel))
	})

	t.Run("all_occurrences_within applies target filters after scoping", func(t *testing.T) {
		t.Parallel()

		f := newFixture()

		sel, err := engine.New().Select(ctx, f.backend, relative(tableAnchor, docsel.RelationAllOccurrencesWithin, docsel.KindCell, docsel.ColumnIndex(2)), docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"B1\r"}, texts(sel))
	})

	t.Run("all_occurrences_within keeps only cells fully inside the anchor", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindParagraph, Filters: []docsel.Filter{docsel.ContainsText("Bold")}}
		wide := &mock.Element{ElementKind: docsel.KindCell, Span: docsel.Range{Start: 30, End: 40}, Content: "straddle"}
		backend := mock.NewBackend(f.bold, wide)

		_, err := engine.New().Select(ctx, backend, relative(anchor, docsel.RelationAllOccurrencesWithin, docsel.KindCell), docsel.SelectOptions{})

		assert.True(t, docsel.IsNotFound(err))
	})

	t.Run("first_occurrence_after returns the next element of the target kind", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindHeading}

		sel, err := engine.New().Select(ctx, f.backend, relative(anchor, docsel.RelationFirstOccurrenceAfter, docsel.KindTable), docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"A1\rB1\r"}, texts(sel))
	})

	t.Run("first_occurrence_after skips elements overlapping the anchor", func(t *testing.T) {
		t.Parallel()

		f := newFixture()

		sel, err := engine.New().Select(ctx, f.backend, relative(tableAnchor, docsel.RelationFirstOccurrenceAfter, docsel.KindParagraph), docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"Bold closing\r"}, texts(sel))
	})

	t.Run("first_occurrence_after reaches past intervening elements", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindHeading}
		loc := relative(anchor, docsel.RelationFirstOccurrenceAfter, docsel.KindParagraph, docsel.IsBold(true))

		// Filters run after the relation picks a single element.
		_, err := engine.New().Select(ctx, f.backend, loc, docsel.SelectOptions{})

		assert.True(t, docsel.IsNotFound(err))
	})

	t.Run("immediately_following returns the element starting at the anchor end", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindParagraph, Filters: []docsel.Filter{docsel.ContainsText("Intro")}}

		sel, err := engine.New().Select(ctx, f.backend, relative(anchor, docsel.RelationImmediatelyFollowing, docsel.KindCell), docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"A1\r"}, texts(sel))
	})

	t.Run("immediately_following finds nothing beyond the one-offset window", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindHeading}

		_, err := engine.New().Select(ctx, f.backend, relative(anchor, docsel.RelationImmediatelyFollowing, docsel.KindTable), docsel.SelectOptions{})

		assert.True(t, docsel.IsNotFound(err))
	})

	t.Run("start_of_document anchors the first paragraph", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindStartOfDocument}

		sel, err := engine.New().Select(ctx, f.backend, relative(anchor, docsel.RelationImmediatelyFollowing, docsel.KindParagraph), docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"Title\r"}, texts(sel))
	})

	t.Run("end_of_document has nothing after it", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindEndOfDocument}

		_, err := engine.New().Select(ctx, f.backend, relative(anchor, docsel.RelationFirstOccurrenceAfter, docsel.KindParagraph), docsel.SelectOptions{})

		assert.True(t, docsel.IsNotFound(err))
	})

	t.Run("parent_of returns the nearest ancestor of the target kind", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindParagraph, Filters: []docsel.Filter{docsel.ContainsText("B1")}}

		sel, err := engine.New().Select(ctx, f.backend, relative(anchor, docsel.RelationParentOf, docsel.KindTable), docsel.SelectOptions{})

		require.NoError(t, err)
		require.Equal(t, 1, sel.Len())
		assert.Same(t, f.table, sel.Elements()[0])
	})

	t.Run("parent_of returns a run's paragraph", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindRun, Filters: []docsel.Filter{docsel.IndexInParent(-1)}}

		sel, err := engine.New().Select(ctx, f.backend, relative(anchor, docsel.RelationParentOf, docsel.KindParagraph), docsel.SelectOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"Intro text.\r"}, texts(sel))
	})

	t.Run("parent_of without a matching ancestor is not found", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindRun}

		_, err := engine.New().Select(ctx, f.backend, relative(anchor, docsel.RelationParentOf, docsel.KindTable), docsel.SelectOptions{})

		assert.True(t, docsel.IsNotFound(err))
	})

	t.Run("reports a missing anchor tagged with the anchor spec", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindComment}

		_, err := engine.New().Select(ctx, f.backend, relative(anchor, docsel.RelationAllOccurrencesWithin, docsel.KindParagraph), docsel.SelectOptions{})

		require.True(t, docsel.IsNotFound(err))
		var e *docsel.Error
		require.ErrorAs(t, err, &e)
		assert.Same(t, anchor, e.Spec)
	})

	t.Run("uses the first of several matching anchors on every call", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		anchor := &docsel.TargetSpec{Type: docsel.KindParagraph, Filters: []docsel.Filter{docsel.IsBold(false)}}
		loc := relative(anchor, docsel.RelationFirstOccurrenceAfter, docsel.KindParagraph)

		for range 3 {
			sel, err := engine.New().Select(ctx, f.backend, loc, docsel.SelectOptions{})
			require.NoError(t, err)
			assert.Equal(t, []string{"A1\r"}, texts(sel))
		}
	})
}
