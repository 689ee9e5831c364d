package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/fwojciec/docsel"
	"github.com/fwojciec/docsel/engine"
	"golang.org/x/sync/errgroup"
)

// mutation describes one edit applied to every file of a command.
type mutation struct {
	files     []string
	locator   string
	single    bool
	operation docsel.Operation
	detail    string
	verb      string
	mutate    func(ctx context.Context, sel *docsel.Selection) error
}

// apply edits every file concurrently and saves them together. When any
// file fails nothing is saved. Edits are journaled once the files are saved.
func apply(deps *Dependencies, m mutation) error {
	loc, err := parseLocator(m.locator)
	if err != nil {
		return report(deps, err)
	}

	files, err := uniqueFiles(m.files)
	if err != nil {
		return report(deps, err)
	}

	edits := make([]*docsel.Edit, len(files))
	g, ctx := errgroup.WithContext(deps.Ctx)
	for i, path := range files {
		g.Go(func() error {
			edit, err := editFile(ctx, deps, path, loc, m)
			if err != nil {
				return &fileError{Path: path, Err: err}
			}
			edits[i] = edit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = deps.Store.Abort()
		return report(deps, err)
	}

	if err := deps.Store.Commit(); err != nil {
		return report(deps, err)
	}
	if err := deps.Editor.Record(deps.Ctx, edits...); err != nil {
		return report(deps, err)
	}

	for i, path := range files {
		fmt.Fprintf(deps.Stdout, "%s: %s %d element(s)\n", path, m.verb, edits[i].Count)
	}
	return nil
}

// uniqueFiles drops repeated paths, including different spellings of the
// same file, keeping the first occurrence. Editing a file twice in one run
// would stage two copies and keep only one of the edits.
func uniqueFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, path)
	}
	return out, nil
}

func editFile(ctx context.Context, deps *Dependencies, path string, loc *docsel.Locator, m mutation) (*docsel.Edit, error) {
	doc, err := deps.Open(path)
	if err != nil {
		return nil, err
	}

	// The journal keys edits by absolute path so history works from any
	// directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	edit, err := deps.Editor.Apply(ctx, engine.EditRequest{
		Path:      abs,
		Document:  doc,
		Locator:   loc,
		Options:   docsel.SelectOptions{ExpectSingle: m.single},
		Operation: m.operation,
		Detail:    m.detail,
		Mutate:    m.mutate,
	})
	if err != nil {
		return nil, err
	}

	if err := deps.Store.Save(ctx, path, doc); err != nil {
		return nil, err
	}
	return edit, nil
}

// Run executes the replace command.
func (c *ReplaceCmd) Run(deps *Dependencies) error {
	return apply(deps, mutation{
		files:     c.Files,
		locator:   c.Locator,
		single:    c.Single,
		operation: docsel.OperationReplace,
		detail:    c.Text,
		verb:      "replaced",
		mutate: func(ctx context.Context, sel *docsel.Selection) error {
			return sel.ReplaceText(ctx, c.Text)
		},
	})
}

// Run executes the insert command.
func (c *InsertCmd) Run(deps *Dependencies) error {
	pos, err := docsel.ParsePosition(c.Position)
	if err != nil {
		return report(deps, err)
	}
	return apply(deps, mutation{
		files:     c.Files,
		locator:   c.Locator,
		single:    c.Single,
		operation: docsel.OperationInsert,
		detail:    insertDetail(pos, c.Style, c.Text),
		verb:      "inserted around",
		mutate: func(ctx context.Context, sel *docsel.Selection) error {
			return sel.InsertText(ctx, c.Text, pos, c.Style)
		},
	})
}

func insertDetail(pos docsel.Position, style, text string) string {
	if style == "" {
		return string(pos) + ": " + text
	}
	return string(pos) + " (" + style + "): " + text
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	return apply(deps, mutation{
		files:     c.Files,
		locator:   c.Locator,
		single:    c.Single,
		operation: docsel.OperationDelete,
		verb:      "deleted",
		mutate: func(ctx context.Context, sel *docsel.Selection) error {
			return sel.Delete(ctx)
		},
	})
}

// Run executes the format command.
func (c *FormatCmd) Run(deps *Dependencies) error {
	options := formatOptions(c.Set)
	f, err := docsel.ParseFormat(options)
	if err != nil {
		return report(deps, err)
	}
	if f.IsZero() {
		return report(deps, docsel.Errorf(docsel.EINVALID, "no formatting options given; use --set key=value"))
	}
	return apply(deps, mutation{
		files:     c.Files,
		locator:   c.Locator,
		single:    c.Single,
		operation: docsel.OperationFormat,
		detail:    f.String(),
		verb:      "formatted",
		mutate: func(ctx context.Context, sel *docsel.Selection) error {
			return sel.ApplyFormat(ctx, options)
		},
	})
}

// Run executes the comment command.
func (c *CommentCmd) Run(deps *Dependencies) error {
	comment := docsel.Comment{Author: c.Author, Text: c.Text}
	return apply(deps, mutation{
		files:     c.Files,
		locator:   c.Locator,
		single:    c.Single,
		operation: docsel.OperationComment,
		detail:    comment.WithDefaults().Author + ": " + c.Text,
		verb:      "commented on",
		mutate: func(ctx context.Context, sel *docsel.Selection) error {
			return sel.AddComment(ctx, comment)
		},
	})
}

// Run executes the reply command.
func (c *ReplyCmd) Run(deps *Dependencies) error {
	comment := docsel.Comment{Author: c.Author, Text: c.Text}
	return apply(deps, mutation{
		files:     c.Files,
		locator:   c.Locator,
		single:    c.Single,
		operation: docsel.OperationReply,
		detail:    comment.WithDefaults().Author + ": " + c.Text,
		verb:      "replied to",
		mutate: func(ctx context.Context, sel *docsel.Selection) error {
			return sel.ReplyToComments(ctx, comment)
		},
	})
}

// Run executes the edit-comment command.
func (c *EditCommentCmd) Run(deps *Dependencies) error {
	return apply(deps, mutation{
		files:     c.Files,
		locator:   c.Locator,
		single:    c.Single,
		operation: docsel.OperationEditComment,
		detail:    c.Text,
		verb:      "edited",
		mutate: func(ctx context.Context, sel *docsel.Selection) error {
			return sel.EditComments(ctx, c.Text)
		},
	})
}

// formatOptions converts key=value flags into the values ParseFormat
// expects. Values that do not parse stay strings so ParseFormat rejects them.
func formatOptions(set map[string]string) map[string]any {
	options := make(map[string]any, len(set))
	for key, value := range set {
		options[key] = value
		switch key {
		case "bold", "italic", "underline":
			if b, err := strconv.ParseBool(value); err == nil {
				options[key] = b
			}
		case "font_size":
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				options[key] = n
			}
		}
	}
	return options
}
