package docsel

import (
	"context"
	"time"
)

// Operation names a mutating operation recorded in the edit journal.
type Operation string

// Journaled operations.
const (
	OperationReplace Operation = "replace"
	OperationInsert  Operation = "insert"
	OperationDelete  Operation = "delete"
	OperationFormat  Operation = "format"

	OperationComment     Operation = "comment"
	OperationReply       Operation = "reply"
	OperationEditComment Operation = "edit_comment"
)

// Edit records one mutation applied to a document through a locator.
type Edit struct {
	ID           string    `json:"id"`
	DocumentPath string    `json:"documentPath"`
	Operation    Operation `json:"operation"`
	Locator      string    `json:"locator"`
	Detail       string    `json:"detail"`
	Count        int       `json:"count"`
	HashBefore   string    `json:"hashBefore"`
	HashAfter    string    `json:"hashAfter"`
	CreatedAt    time.Time `json:"createdAt"`

	// Document content before and after the edit. Only their hashes are
	// stored.
	Before []byte `json:"-"`
	After  []byte `json:"-"`
}

// Validate returns an error if the edit contains invalid fields.
func (e *Edit) Validate() error {
	if e.DocumentPath == "" {
		return Errorf(EINVALID, "edit document path required")
	}
	switch e.Operation {
	case OperationReplace, OperationInsert, OperationDelete, OperationFormat,
		OperationComment, OperationReply, OperationEditComment:
	case "":
		return Errorf(EINVALID, "edit operation required")
	default:
		return Errorf(EINVALID, "unknown edit operation %q", e.Operation)
	}
	if e.Locator == "" {
		return Errorf(EINVALID, "edit locator required")
	}
	return nil
}

// EditService represents a service for journaling document edits.
type EditService interface {
	// CreateEdit records a new edit.
	CreateEdit(ctx context.Context, edit *Edit) error

	// FindEdits retrieves edits matching the filter, newest first.
	FindEdits(ctx context.Context, filter EditFilter) ([]*Edit, error)
}

// EditFilter represents a filter for FindEdits.
type EditFilter struct {
	DocumentPath *string `json:"documentPath"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
