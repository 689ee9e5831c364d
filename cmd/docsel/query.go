package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/docsel"
	"golang.org/x/sync/errgroup"
)

// fileError attributes an error to the document it occurred in.
type fileError struct {
	Path string
	Err  error
}

func (e *fileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *fileError) Unwrap() error { return e.Err }

// report prints err to stderr and returns it. Application errors print
// their message; anything else prints in full.
func report(deps *Dependencies, err error) error {
	msg := err.Error()
	if docsel.ErrorCode(err) != docsel.EINTERNAL {
		msg = docsel.ErrorMessage(err)
		var fe *fileError
		if errors.As(err, &fe) {
			msg = fe.Path + ": " + msg
		}
	}
	fmt.Fprintf(deps.Stderr, "error: %s\n", msg)
	return err
}

// parseLocator decodes a locator given inline or, prefixed with @, as the
// name of a file holding it.
func parseLocator(arg string) (*docsel.Locator, error) {
	data := []byte(arg)
	if name, ok := strings.CutPrefix(arg, "@"); ok {
		var err error
		if data, err = os.ReadFile(name); err != nil {
			return nil, err
		}
	}
	return docsel.ParseLocator(data)
}

// query selects loc in every file, loading up to concurrency documents at a
// time. Selections are returned in file order.
func query(deps *Dependencies, files []string, concurrency int, loc *docsel.Locator, opts docsel.SelectOptions) ([]*docsel.Selection, error) {
	sels := make([]*docsel.Selection, len(files))
	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(max(concurrency, 1))
	for i, path := range files {
		g.Go(func() error {
			sel, err := selectFile(ctx, deps, path, loc, opts)
			if err != nil {
				return &fileError{Path: path, Err: err}
			}
			sels[i] = sel
			return nil
		})
	}
	return sels, g.Wait()
}

func selectFile(ctx context.Context, deps *Dependencies, path string, loc *docsel.Locator, opts docsel.SelectOptions) (*docsel.Selection, error) {
	doc, err := deps.Open(path)
	if err != nil {
		return nil, err
	}
	return deps.Selector.Select(ctx, doc, loc, opts)
}

// Run executes the select command.
func (c *SelectCmd) Run(deps *Dependencies) error {
	loc, err := parseLocator(c.Locator)
	if err != nil {
		return report(deps, err)
	}

	sels, err := query(deps, c.Files, c.Concurrency, loc, docsel.SelectOptions{ExpectSingle: c.Single})
	if err != nil {
		return report(deps, err)
	}

	if c.JSON {
		type result struct {
			Path     string               `json:"path"`
			Elements []docsel.ElementInfo `json:"elements"`
		}
		results := make([]result, len(sels))
		for i, sel := range sels {
			results[i] = result{Path: c.Files[i], Elements: sel.Describe()}
		}
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i, sel := range sels {
		for _, info := range sel.Describe() {
			if len(c.Files) > 1 {
				fmt.Fprintf(deps.Stdout, "%s  ", c.Files[i])
			}
			fmt.Fprintf(deps.Stdout, "%d  %s  [%d,%d)  %q\n", info.Index, info.Kind, info.Range.Start, info.Range.End, info.Text)
		}
	}
	return nil
}

// terminal renders paragraph marks and line breaks as newlines.
var terminal = strings.NewReplacer("\r", "\n", "\v", "\n")

// Run executes the text command. Each element's text is printed on its own
// line.
func (c *TextCmd) Run(deps *Dependencies) error {
	loc, err := parseLocator(c.Locator)
	if err != nil {
		return report(deps, err)
	}

	sels, err := query(deps, c.Files, c.Concurrency, loc, docsel.SelectOptions{ExpectSingle: c.Single})
	if err != nil {
		return report(deps, err)
	}

	for i, sel := range sels {
		if len(c.Files) > 1 {
			fmt.Fprintf(deps.Stdout, "==> %s <==\n", c.Files[i])
		}
		for _, info := range sel.Describe() {
			fmt.Fprintln(deps.Stdout, strings.TrimRight(terminal.Replace(info.Text), "\n"))
		}
	}
	return nil
}

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	loc, err := parseLocator(c.Locator)
	if err != nil {
		return report(deps, err)
	}

	sels, err := query(deps, c.Files, c.Concurrency, loc, docsel.SelectOptions{})
	if err != nil {
		return report(deps, err)
	}

	for i, sel := range sels {
		path := c.Files[i]
		md, err := deps.Exporter.Export(sel)
		if err != nil {
			return report(deps, &fileError{Path: path, Err: err})
		}

		if deps.Excerpts == nil {
			if len(c.Files) > 1 {
				fmt.Fprintf(deps.Stdout, "<!-- %s -->\n\n", path)
			}
			fmt.Fprintln(deps.Stdout, md)
			continue
		}

		if err := deps.Excerpts.WriteExcerpt(deps.Ctx, &docsel.Excerpt{
			SourcePath: path,
			Locator:    loc.String(),
			Content:    md,
			ExportedAt: time.Now(),
		}); err != nil {
			return report(deps, &fileError{Path: path, Err: err})
		}
		fmt.Fprintf(deps.Stdout, "Exported %s (%d elements)\n", path, sel.Len())
	}
	return nil
}
