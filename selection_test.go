package docsel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docsel"
	"github.com/fwojciec/docsel/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelection(t *testing.T) {
	t.Parallel()

	t.Run("refuses an empty element list", func(t *testing.T) {
		t.Parallel()

		sel, err := docsel.NewSelection(nil, &mock.Backend{})

		assert.Nil(t, sel)
		assert.True(t, docsel.IsNotFound(err))
	})

	t.Run("exposes elements in order", func(t *testing.T) {
		t.Parallel()

		in := paragraphs("a", "b")

		sel, err := docsel.NewSelection(in, &mock.Backend{})

		require.NoError(t, err)
		assert.Equal(t, 2, sel.Len())
		assert.Equal(t, in, sel.Elements())
	})
}

func TestSelection_Text(t *testing.T) {
	t.Parallel()

	t.Run("strips paragraph marks", func(t *testing.T) {
		t.Parallel()

		sel, err := docsel.NewSelection(paragraphs("First paragraph.", "Second."), &mock.Backend{})
		require.NoError(t, err)

		assert.Equal(t, "First paragraph.Second.", sel.Text())
	})

	t.Run("keeps text of other kinds as is", func(t *testing.T) {
		t.Parallel()

		run := &mock.Element{ElementKind: docsel.KindRun, Content: "run\r"}
		sel, err := docsel.NewSelection([]docsel.Element{run}, &mock.Backend{})
		require.NoError(t, err)

		assert.Equal(t, "run\r", sel.Text())
	})

	t.Run("returns the same text on repeated calls", func(t *testing.T) {
		t.Parallel()

		sel, err := docsel.NewSelection(paragraphs("one", "two", "three"), &mock.Backend{})
		require.NoError(t, err)

		assert.Equal(t, sel.Text(), sel.Text())
	})
}

func TestSelection_Describe(t *testing.T) {
	t.Parallel()

	cell := &mock.Element{
		ElementKind: docsel.KindCell,
		Span:        docsel.Range{Start: 5, End: 9},
		Content:     "abc",
		Position:    &docsel.CellPosition{Row: 1, Column: 2},
	}
	sel, err := docsel.NewSelection([]docsel.Element{mock.Paragraph(0, "head"), cell}, &mock.Backend{})
	require.NoError(t, err)

	infos := sel.Describe()

	require.Len(t, infos, 2)
	assert.Equal(t, docsel.ElementInfo{
		Index: 0,
		Kind:  docsel.KindParagraph,
		Range: docsel.Range{Start: 0, End: 5},
		Text:  "head",
		Style: "Normal",
	}, infos[0])
	assert.Equal(t, &docsel.CellPosition{Row: 1, Column: 2}, infos[1].Cell)
}

func TestSelection_ApplyFormat(t *testing.T) {
	t.Parallel()

	t.Run("applies the format to every element", func(t *testing.T) {
		t.Parallel()

		var formatted []docsel.Element
		var got docsel.Format
		b := &mock.Backend{
			SetFormatFn: func(_ context.Context, el docsel.Element, f docsel.Format) error {
				formatted = append(formatted, el)
				got = f
				return nil
			},
		}
		in := paragraphs("a", "b")
		sel, err := docsel.NewSelection(in, b)
		require.NoError(t, err)

		err = sel.ApplyFormat(context.Background(), map[string]any{"bold": true, "glow": 3})

		require.NoError(t, err)
		assert.Equal(t, in, formatted)
		require.NotNil(t, got.Bold)
		assert.True(t, *got.Bold)
		assert.Nil(t, got.Italic)
	})

	t.Run("does nothing when no key is recognized", func(t *testing.T) {
		t.Parallel()

		sel, err := docsel.NewSelection(paragraphs("a"), &mock.Backend{})
		require.NoError(t, err)

		assert.NoError(t, sel.ApplyFormat(context.Background(), map[string]any{"glow": 3}))
	})

	t.Run("stops at the first backend failure", func(t *testing.T) {
		t.Parallel()

		errBackend := errors.New("document closed")
		calls := 0
		b := &mock.Backend{
			SetFormatFn: func(context.Context, docsel.Element, docsel.Format) error {
				calls++
				return errBackend
			},
		}
		sel, err := docsel.NewSelection(paragraphs("a", "b"), b)
		require.NoError(t, err)

		err = sel.ApplyFormat(context.Background(), map[string]any{"italic": true})

		assert.Same(t, errBackend, err)
		assert.Equal(t, 1, calls)
	})
}

func TestSelection_InsertText(t *testing.T) {
	t.Parallel()

	t.Run("inserts before the first element", func(t *testing.T) {
		t.Parallel()

		var offset int
		b := &mock.Backend{
			InsertTextFn: func(_ context.Context, at int, _ string) error {
				offset = at
				return nil
			},
		}
		sel, err := docsel.NewSelection([]docsel.Element{mock.Paragraph(4, "x"), mock.Paragraph(6, "y")}, b)
		require.NoError(t, err)

		require.NoError(t, sel.InsertText(context.Background(), "new\n", docsel.PositionBefore, ""))
		assert.Equal(t, 4, offset)
	})

	t.Run("inserts after the content of the last element", func(t *testing.T) {
		t.Parallel()

		var offset int
		var inserted string
		b := &mock.Backend{
			InsertTextFn: func(_ context.Context, at int, text string) error {
				offset, inserted = at, text
				return nil
			},
		}
		sel, err := docsel.NewSelection([]docsel.Element{mock.Paragraph(4, "x"), mock.Paragraph(6, "y")}, b)
		require.NoError(t, err)

		require.NoError(t, sel.InsertText(context.Background(), "tail", docsel.PositionAfter, ""))
		assert.Equal(t, 7, offset)
		assert.Equal(t, "tail", inserted)
	})

	t.Run("replace deletes all but the first and overwrites the first", func(t *testing.T) {
		t.Parallel()

		var calls []string
		b := &mock.Backend{
			DeleteFn: func(_ context.Context, el docsel.Element) error {
				calls = append(calls, "delete "+el.Text())
				return nil
			},
			SetTextFn: func(_ context.Context, el docsel.Element, text string) error {
				calls = append(calls, "set "+el.Text()+" "+text)
				return nil
			},
		}
		sel, err := docsel.NewSelection(paragraphs("a", "b", "c"), b)
		require.NoError(t, err)

		require.NoError(t, sel.InsertText(context.Background(), "z", docsel.PositionReplace, ""))
		assert.Equal(t, []string{"delete c\r", "delete b\r", "set a\r z"}, calls)
	})

	t.Run("rejects unknown positions", func(t *testing.T) {
		t.Parallel()

		sel, err := docsel.NewSelection(paragraphs("a"), &mock.Backend{})
		require.NoError(t, err)

		err = sel.InsertText(context.Background(), "z", "middle", "")

		assert.Equal(t, docsel.EINVALID, docsel.ErrorCode(err))
	})

	t.Run("inserts after a run at its end", func(t *testing.T) {
		t.Parallel()

		var offset int
		b := &mock.Backend{
			InsertTextFn: func(_ context.Context, at int, _ string) error {
				offset = at
				return nil
			},
		}
		run := &mock.Element{ElementKind: docsel.KindRun, Span: docsel.Range{Start: 3, End: 6}, Content: "abc"}
		sel, err := docsel.NewSelection([]docsel.Element{run}, b)
		require.NoError(t, err)

		require.NoError(t, sel.InsertText(context.Background(), "d", docsel.PositionAfter, ""))
		assert.Equal(t, 6, offset)
	})

	t.Run("styles the paragraphs inserted after the selection", func(t *testing.T) {
		t.Parallel()

		var offset int
		var inserted string
		var queried docsel.Range
		var style string
		styled := mock.Paragraph(8, "Note")
		b := &mock.Backend{
			InsertTextFn: func(_ context.Context, at int, text string) error {
				offset, inserted = at, text
				return nil
			},
			ElementsInRangeFn: func(_ context.Context, kind docsel.ElementKind, r docsel.Range) ([]docsel.Element, error) {
				assert.Equal(t, docsel.KindParagraph, kind)
				queried = r
				return []docsel.Element{styled}, nil
			},
			SetFormatFn: func(_ context.Context, el docsel.Element, f docsel.Format) error {
				assert.Same(t, styled, el)
				require.NotNil(t, f.ParagraphStyle)
				style = *f.ParagraphStyle
				return nil
			},
		}
		sel, err := docsel.NewSelection([]docsel.Element{mock.Paragraph(4, "abc")}, b)
		require.NoError(t, err)

		require.NoError(t, sel.InsertText(context.Background(), "Note", docsel.PositionAfter, "Quote"))
		assert.Equal(t, 7, offset)
		assert.Equal(t, "\nNote", inserted)
		assert.Equal(t, docsel.Range{Start: 8, End: 12}, queried)
		assert.Equal(t, "Quote", style)
	})

	t.Run("styles the paragraphs inserted before the selection", func(t *testing.T) {
		t.Parallel()

		var inserted string
		var queried docsel.Range
		b := &mock.Backend{
			InsertTextFn: func(_ context.Context, _ int, text string) error {
				inserted = text
				return nil
			},
			ElementsInRangeFn: func(_ context.Context, _ docsel.ElementKind, r docsel.Range) ([]docsel.Element, error) {
				queried = r
				return nil, nil
			},
		}
		sel, err := docsel.NewSelection([]docsel.Element{mock.Paragraph(4, "abc")}, b)
		require.NoError(t, err)

		require.NoError(t, sel.InsertText(context.Background(), "a\nb", docsel.PositionBefore, "Quote"))
		assert.Equal(t, "a\nb\n", inserted)
		assert.Equal(t, docsel.Range{Start: 4, End: 7}, queried)
	})
}

func TestSelection_AddComment(t *testing.T) {
	t.Parallel()

	t.Run("spans the selected content", func(t *testing.T) {
		t.Parallel()

		var got docsel.Range
		var comment docsel.Comment
		b := &mock.Backend{
			AddCommentFn: func(_ context.Context, r docsel.Range, c docsel.Comment) error {
				got, comment = r, c
				return nil
			},
		}
		sel, err := docsel.NewSelection([]docsel.Element{mock.Paragraph(4, "ab"), mock.Paragraph(7, "cd")}, b)
		require.NoError(t, err)

		require.NoError(t, sel.AddComment(context.Background(), docsel.Comment{Text: "Check", Author: "Ada Lovelace"}))
		assert.Equal(t, docsel.Range{Start: 4, End: 9}, got)
		assert.Equal(t, "AL", comment.Initials)
	})

	t.Run("signs anonymous comments", func(t *testing.T) {
		t.Parallel()

		var comment docsel.Comment
		b := &mock.Backend{
			AddCommentFn: func(_ context.Context, _ docsel.Range, c docsel.Comment) error {
				comment = c
				return nil
			},
		}
		sel, err := docsel.NewSelection(paragraphs("a"), b)
		require.NoError(t, err)

		require.NoError(t, sel.AddComment(context.Background(), docsel.Comment{Text: "Check"}))
		assert.Equal(t, docsel.DefaultCommentAuthor, comment.Author)
	})
}

func TestSelection_ReplyToComments(t *testing.T) {
	t.Parallel()

	t.Run("replies to every comment", func(t *testing.T) {
		t.Parallel()

		var parents []string
		b := &mock.Backend{
			ReplyToCommentFn: func(_ context.Context, parent docsel.Element, c docsel.Comment) error {
				parents = append(parents, parent.Text())
				assert.Equal(t, "Done", c.Text)
				return nil
			},
		}
		comments := []docsel.Element{
			&mock.Element{ElementKind: docsel.KindComment, Content: "one"},
			&mock.Element{ElementKind: docsel.KindComment, Content: "two"},
		}
		sel, err := docsel.NewSelection(comments, b)
		require.NoError(t, err)

		require.NoError(t, sel.ReplyToComments(context.Background(), docsel.Comment{Text: "Done"}))
		assert.Equal(t, []string{"one", "two"}, parents)
	})

	t.Run("refuses selections with other kinds", func(t *testing.T) {
		t.Parallel()

		sel, err := docsel.NewSelection(paragraphs("a"), &mock.Backend{})
		require.NoError(t, err)

		err = sel.ReplyToComments(context.Background(), docsel.Comment{Text: "Done"})

		assert.Equal(t, docsel.EINVALID, docsel.ErrorCode(err))
	})
}

func TestSelection_EditComments(t *testing.T) {
	t.Parallel()

	t.Run("overwrites comment text", func(t *testing.T) {
		t.Parallel()

		var text string
		b := &mock.Backend{
			SetTextFn: func(_ context.Context, _ docsel.Element, s string) error {
				text = s
				return nil
			},
		}
		comment := &mock.Element{ElementKind: docsel.KindComment, Content: "old"}
		sel, err := docsel.NewSelection([]docsel.Element{comment}, b)
		require.NoError(t, err)

		require.NoError(t, sel.EditComments(context.Background(), "new"))
		assert.Equal(t, "new", text)
	})

	t.Run("refuses selections with other kinds", func(t *testing.T) {
		t.Parallel()

		sel, err := docsel.NewSelection(paragraphs("a"), &mock.Backend{})
		require.NoError(t, err)

		assert.Equal(t, docsel.EINVALID, docsel.ErrorCode(sel.EditComments(context.Background(), "new")))
	})
}

func TestSelection_ReplaceText(t *testing.T) {
	t.Parallel()

	t.Run("overwrites every element", func(t *testing.T) {
		t.Parallel()

		var replaced []string
		b := &mock.Backend{
			SetTextFn: func(_ context.Context, el docsel.Element, text string) error {
				replaced = append(replaced, el.Text())
				assert.Equal(t, "new", text)
				return nil
			},
		}
		sel, err := docsel.NewSelection(paragraphs("a", "b"), b)
		require.NoError(t, err)

		require.NoError(t, sel.ReplaceText(context.Background(), "new"))
		assert.ElementsMatch(t, []string{"a\r", "b\r"}, replaced)
	})

	t.Run("returns backend errors unchanged", func(t *testing.T) {
		t.Parallel()

		errBackend := errors.New("read-only document")
		b := &mock.Backend{
			SetTextFn: func(context.Context, docsel.Element, string) error { return errBackend },
		}
		sel, err := docsel.NewSelection(paragraphs("a"), b)
		require.NoError(t, err)

		assert.Same(t, errBackend, sel.ReplaceText(context.Background(), "new"))
	})
}

func TestSelection_Delete(t *testing.T) {
	t.Parallel()

	t.Run("deletes every element from last to first", func(t *testing.T) {
		t.Parallel()

		var deleted []string
		b := &mock.Backend{
			DeleteFn: func(_ context.Context, el docsel.Element) error {
				deleted = append(deleted, el.Text())
				return nil
			},
		}
		sel, err := docsel.NewSelection(paragraphs("a", "b", "c"), b)
		require.NoError(t, err)

		require.NoError(t, sel.Delete(context.Background()))
		assert.Equal(t, []string{"c\r", "b\r", "a\r"}, deleted)
	})

	t.Run("aborts on the first failure", func(t *testing.T) {
		t.Parallel()

		errBackend := errors.New("locked")
		calls := 0
		b := &mock.Backend{
			DeleteFn: func(context.Context, docsel.Element) error {
				calls++
				return errBackend
			},
		}
		sel, err := docsel.NewSelection(paragraphs("a", "b"), b)
		require.NoError(t, err)

		assert.Same(t, errBackend, sel.Delete(context.Background()))
		assert.Equal(t, 1, calls)
	})
}
