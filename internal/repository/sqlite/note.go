package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"linkvault/internal/apperror"
	"linkvault/internal/model"
	"linkvault/internal/repository"
)

// compile-time check that *DB implements repository.NoteRepository
var _ repository.NoteRepository = (*DB)(nil)

const noteColumns = `id, title, content, tags, owner_id, created_at, updated_at`

// Create inserts a new note.
func (db *DB) CreateNote(ctx context.Context, n *model.Note) error {
	n.ID = xid.New().String()

	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.Title,
		n.Content,
		n.Tags,
		n.OwnerID,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating note: %w", err)
	}

	return nil
}

// GetNoteByID retrieves a single note by ID, regardless of owner.
// The ownership check lives in the service layer.
func (db *DB) GetNoteByID(ctx context.Context, id string) (*model.Note, error) {
	var n model.Note

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`,
		id,
	).Scan(
		&n.ID,
		&n.Title,
		&n.Content,
		&n.Tags,
		&n.OwnerID,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("note", id)
		}
		return nil, fmt.Errorf("sqlite: getting note %s: %w", id, err)
	}

	return &n, nil
}

// ListNotesByOwner returns the caller's notes, filtered and paginated.
//
// Same incremental WHERE construction as the bookmark listing: the owner
// predicate is always present, search OR's across title and content, tag
// matches inside the raw tags string. See ListByOwner in bookmark.go for
// why instr(lower(...)) rather than LIKE, and why the needle is folded with
// asciiLower rather than strings.ToLower.
//
// Ordering: updated_at DESC, not created_at — notes are edit-heavy, the one
// you touched last is the one you want back first.
func (db *DB) ListNotesByOwner(ctx context.Context, ownerID string, f repository.ListFilter) ([]model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE owner_id = ?`
	args := []any{ownerID}

	if f.Search != "" {
		query += ` AND (instr(lower(title), ?) > 0 OR instr(lower(content), ?) > 0)`
		needle := asciiLower(f.Search)
		args = append(args, needle, needle)
	}

	if f.Tag != "" {
		query += ` AND instr(lower(tags), ?) > 0`
		args = append(args, asciiLower(f.Tag))
	}

	query += ` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notes: %w", err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0, f.Limit)

	for rows.Next() {
		var n model.Note
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Content, &n.Tags,
			&n.OwnerID, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning note row: %w", err)
		}
		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notes: %w", err)
	}

	return notes, nil
}

// UpdateNote persists all mutable fields of an existing note.
func (db *DB) UpdateNote(ctx context.Context, n *model.Note) error {
	n.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE notes
		 SET title = ?, content = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		n.Title,
		n.Content,
		n.Tags,
		n.UpdatedAt,
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating note %s: %w", n.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("note", n.ID)
	}

	return nil
}

// DeleteNote removes a note by its ID.
func (db *DB) DeleteNote(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting note %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("note", id)
	}

	return nil
}
