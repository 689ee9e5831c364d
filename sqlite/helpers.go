package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docsel"
)

// timeLayout is fixed width so stored timestamps sort as text, with
// nanoseconds to order edits made within the same second.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// editColumns lists the columns scanEdit reads, in order.
const editColumns = "id, document_path, operation, locator, detail, count, hash_before, hash_after, created_at"

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEdit reads one edits row selected with editColumns.
func scanEdit(s scanner) (*docsel.Edit, error) {
	var edit docsel.Edit
	var operation, createdAt string
	if err := s.Scan(&edit.ID, &edit.DocumentPath, &operation, &edit.Locator, &edit.Detail,
		&edit.Count, &edit.HashBefore, &edit.HashAfter, &createdAt); err != nil {
		return nil, err
	}
	edit.Operation = docsel.Operation(operation)

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at of edit %s: %w", edit.ID, err)
	}
	edit.CreatedAt = t
	return &edit, nil
}

// appendPagination appends LIMIT and OFFSET clauses when values are > 0.
// SQLite only accepts OFFSET after LIMIT, so an offset alone gets LIMIT -1.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	} else if offset > 0 {
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
