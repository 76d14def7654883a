package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"linkvault/internal/apperror"
	"linkvault/internal/model"
	"linkvault/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors immediately instead of at
// some later call site. Standard practice for any interface implementation.
var _ repository.BookmarkRepository = (*DB)(nil)

const bookmarkColumns = `id, title, url, description, tags, crawl_interval, owner_id, created_at, updated_at`

// Create inserts a new bookmark.
//
// ID GENERATION WITH xid:
// xid generates 20-char, URL-safe, globally unique IDs that sort by creation
// time (they start with a timestamp). The caller's struct is modified
// in-place (pointer receiver) so it carries the generated ID and timestamps
// back out.
//
// PARAMETERIZED QUERIES (the ? placeholders):
// NEVER build SQL strings with fmt.Sprintf or string concatenation — that's
// how SQL injection happens. The driver escapes every ? argument safely.
func (db *DB) Create(ctx context.Context, b *model.Bookmark) error {
	b.ID = xid.New().String()

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO bookmarks (`+bookmarkColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.Title,
		b.URL,
		b.Description,
		b.Tags,
		b.CrawlInterval,
		b.OwnerID,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating bookmark: %w", err)
	}

	return nil
}

// GetByID retrieves a single bookmark by its ID, regardless of owner.
// The ownership decision belongs to the service layer — see service.getOwned.
// sql.ErrNoRows is translated to the domain NotFound error here so no caller
// ever has to know about database/sql sentinels.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Bookmark, error) {
	var b model.Bookmark

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ?`,
		id,
	).Scan(
		&b.ID,
		&b.Title,
		&b.URL,
		&b.Description,
		&b.Tags,
		&b.CrawlInterval,
		&b.OwnerID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("bookmark", id)
		}
		return nil, fmt.Errorf("sqlite: getting bookmark %s: %w", id, err)
	}

	return &b, nil
}

// ListByOwner returns the caller's bookmarks, filtered and paginated.
//
// QUERY CONSTRUCTION:
// The WHERE clause is assembled incrementally, but only from fixed SQL
// fragments — user input travels exclusively through the args slice. The
// owner predicate is the base of the query and is never optional; search and
// tag narrow it further.
//
// WHY instr(lower(...)) INSTEAD OF LIKE?
// The filters are substring matches over user-supplied text. With LIKE we'd
// have to escape % and _ in the needle; instr() has no metacharacters, so
// searching for "100%" just works.
//
// CASE FOLDING:
// SQLite's lower() folds the ASCII range only, so the needle must be folded
// with the same rule — see asciiLower. Folding it with strings.ToLower would
// turn "MÜNCHEN" into "münchen" on the Go side while lower() leaves the
// column's "Ü" untouched, and the byte-identical substring would stop
// matching.
//
// Ordering: created_at DESC — bookmarks are append-heavy, the newest saves
// are what the user wants on page one.
func (db *DB) ListByOwner(ctx context.Context, ownerID string, f repository.ListFilter) ([]model.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE owner_id = ?`
	args := []any{ownerID}

	if f.Search != "" {
		query += ` AND (instr(lower(title), ?) > 0
		            OR instr(lower(description), ?) > 0
		            OR instr(lower(url), ?) > 0)`
		needle := asciiLower(f.Search)
		args = append(args, needle, needle, needle)
	}

	if f.Tag != "" {
		query += ` AND instr(lower(tags), ?) > 0`
		args = append(args, asciiLower(f.Tag))
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bookmarks: %w", err)
	}
	defer rows.Close()

	return scanBookmarks(rows, f.Limit)
}

// ListCrawlable returns every feed-eligible bookmark across all owners,
// newest-created first. Eligible means crawl_interval != 'never' — the one
// visibility rule for public output.
func (db *DB) ListCrawlable(ctx context.Context) ([]model.Bookmark, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks
		 WHERE crawl_interval != ?
		 ORDER BY created_at DESC, id DESC`,
		model.IntervalNever,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing crawlable bookmarks: %w", err)
	}
	defer rows.Close()

	return scanBookmarks(rows, 0)
}

// ListByInterval returns every bookmark with exactly the given crawl
// interval, across all owners, newest-created first. The service validates
// the interval key before calling; passing 'never' here would simply return
// those rows, so the validation must stay upstream.
func (db *DB) ListByInterval(ctx context.Context, interval string) ([]model.Bookmark, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks
		 WHERE crawl_interval = ?
		 ORDER BY created_at DESC, id DESC`,
		interval,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bookmarks for interval %s: %w", interval, err)
	}
	defer rows.Close()

	return scanBookmarks(rows, 0)
}

// Update persists all mutable fields of an existing bookmark.
// Field-level patch semantics are applied by the service before this call;
// here the whole row (minus id, owner_id, created_at) is written back.
func (db *DB) Update(ctx context.Context, b *model.Bookmark) error {
	b.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE bookmarks
		 SET title = ?, url = ?, description = ?, tags = ?, crawl_interval = ?, updated_at = ?
		 WHERE id = ?`,
		b.Title,
		b.URL,
		b.Description,
		b.Tags,
		b.CrawlInterval,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating bookmark %s: %w", b.ID, err)
	}

	// RowsAffected() tells us how many rows the UPDATE changed.
	// 0 rows → the WHERE didn't match anything → not found.
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("bookmark", b.ID)
	}

	return nil
}

// Delete removes a bookmark by its ID. Same RowsAffected pattern as Update.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting bookmark %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("bookmark", id)
	}

	return nil
}

// asciiLower folds only A-Z, the same rule SQLite's built-in lower() applies
// to the column side of the search predicates. Non-ASCII runes pass through
// unchanged, so a needle like "MÜNCHEN" still matches its byte-identical
// stored form.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// scanBookmarks drains a result set into a slice.
//
// defer rows.Close() at the call site is what returns the pooled connection;
// here we only iterate. Always check rows.Err() after the loop — it catches
// errors that happened DURING iteration (connection drops etc.).
func scanBookmarks(rows *sql.Rows, capacityHint int) ([]model.Bookmark, error) {
	bookmarks := make([]model.Bookmark, 0, capacityHint)

	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(
			&b.ID, &b.Title, &b.URL, &b.Description, &b.Tags,
			&b.CrawlInterval, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning bookmark row: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating bookmarks: %w", err)
	}

	return bookmarks, nil
}
