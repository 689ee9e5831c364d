package sqlite

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docsel"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docsel.EditService = (*EditService)(nil)

// EditService implements docsel.EditService using SQLite.
type EditService struct {
	db *DB
}

// NewEditService creates a new EditService.
func NewEditService(db *DB) *EditService {
	return &EditService{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content []byte) string {
	return hex.EncodeToString(binary.BigEndian.AppendUint64(nil, xxhash.Sum64(content)))
}

// CreateEdit records a new edit. Hashes are computed from Before and After
// when they are set.
func (s *EditService) CreateEdit(ctx context.Context, edit *docsel.Edit) error {
	if err := edit.Validate(); err != nil {
		return err
	}

	edit.ID = uuid.New().String()
	edit.CreatedAt = time.Now().UTC()
	if edit.Before != nil {
		edit.HashBefore = hashContent(edit.Before)
	}
	if edit.After != nil {
		edit.HashAfter = hashContent(edit.After)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO edits (id, document_path, operation, locator, detail, count, hash_before, hash_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, edit.ID, edit.DocumentPath, string(edit.Operation), edit.Locator, edit.Detail, edit.Count,
		edit.HashBefore, edit.HashAfter, edit.CreatedAt.Format(timeLayout))

	return err
}

// FindEdits retrieves edits matching the filter, newest first.
func (s *EditService) FindEdits(ctx context.Context, filter docsel.EditFilter) ([]*docsel.Edit, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + editColumns + " FROM edits WHERE 1=1")

	if filter.DocumentPath != nil {
		query.WriteString(" AND document_path = ?")
		args = append(args, *filter.DocumentPath)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edits []*docsel.Edit
	for rows.Next() {
		edit, err := scanEdit(rows)
		if err != nil {
			return nil, err
		}
		edits = append(edits, edit)
	}

	return edits, rows.Err()
}
