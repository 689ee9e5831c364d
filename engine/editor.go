package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fwojciec/docsel"
)

// Editor applies mutations to the elements a locator selects and records
// them in an edit journal.
type Editor struct {
	Selector docsel.Selector

	// Edits receives the entries passed to Record. Nil disables
	// journaling.
	Edits docsel.EditService
}

// NewEditor creates an Editor.
func NewEditor(selector docsel.Selector, edits docsel.EditService) *Editor {
	return &Editor{Selector: selector, Edits: edits}
}

// EditRequest describes one mutation of a document.
type EditRequest struct {
	Path      string
	Document  docsel.Document
	Locator   *docsel.Locator
	Options   docsel.SelectOptions
	Operation docsel.Operation
	Detail    string

	// Mutate changes the selected elements.
	Mutate func(ctx context.Context, sel *docsel.Selection) error
}

// Apply selects the request's locator and mutates the selection. The
// returned edit carries the number of elements changed and, when journaling
// is enabled, the document content before and after. A failed mutation may
// leave the document partially changed.
func (e *Editor) Apply(ctx context.Context, req EditRequest) (*docsel.Edit, error) {
	edit := &docsel.Edit{
		DocumentPath: req.Path,
		Operation:    req.Operation,
		Locator:      req.Locator.String(),
		Detail:       req.Detail,
	}

	var err error
	if e.Edits != nil {
		if edit.Before, err = snapshot(req.Document); err != nil {
			return nil, err
		}
	}

	sel, err := e.Selector.Select(ctx, req.Document, req.Locator, req.Options)
	if err != nil {
		return nil, err
	}
	edit.Count = sel.Len()

	if err := req.Mutate(ctx, sel); err != nil {
		return nil, err
	}

	if e.Edits != nil {
		if edit.After, err = snapshot(req.Document); err != nil {
			return nil, err
		}
	}
	return edit, nil
}

// Record journals edits returned by Apply. Callers record an edit once the
// change it describes is kept.
func (e *Editor) Record(ctx context.Context, edits ...*docsel.Edit) error {
	if e.Edits == nil {
		return nil
	}
	for _, edit := range edits {
		if err := e.Edits.CreateEdit(ctx, edit); err != nil {
			return fmt.Errorf("journal edit: %w", err)
		}
	}
	return nil
}

func snapshot(doc docsel.Document) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("snapshot document: %w", err)
	}
	return buf.Bytes(), nil
}
