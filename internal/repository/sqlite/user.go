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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, username, password_hash, github_id, is_active, created_at, updated_at`

// CreateUser inserts a new password-registered user.
//
// The UNIQUE constraint on email is the source of truth for "already
// registered" — we translate that constraint violation into the domain
// Conflict error rather than racing a SELECT-then-INSERT check.
func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.ID = xid.New().String()
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, username, password_hash, github_id, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		u.ID,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.GitHubID,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		// modernc.org/sqlite reports constraint violations with the SQLite
		// error text; matching on "UNIQUE constraint failed" is how we tell
		// a duplicate email apart from a real storage failure.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("user", u.Email)
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", u.Email, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `id = ?`, id)
}

// GetUserByEmail retrieves a user by email, for the login flow.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `email = ?`, email)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.GitHubID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user %v: %w", arg, err)
	}

	return &u, nil
}

// UpsertGitHubUser inserts or updates a user based on their GitHub ID.
//
// First OAuth login → INSERT with a fresh internal ID. Subsequent logins →
// UPDATE the profile fields in case the username/email changed on GitHub,
// keeping the existing internal ID so the user's bookmarks stay theirs.
//
// We look the user up by github_id first instead of INSERT OR REPLACE:
// REPLACE would delete and re-insert the row, firing the foreign-key
// references from bookmarks/notes.
func (db *DB) UpsertGitHubUser(ctx context.Context, u *model.User) error {
	if u.GitHubID == nil {
		return fmt.Errorf("sqlite: upserting user: github id is required")
	}

	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, *u.GitHubID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", *u.GitHubID, err)
	}

	if existingID != "" {
		u.ID = existingID
		u.UpdatedAt = time.Now().UTC()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET email = ?, username = ?, updated_at = ?
			 WHERE id = ?`,
			u.Email,
			u.Username,
			u.UpdatedAt,
			u.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", u.ID, err)
		}

		// Re-read is_active and created_at so the caller gets the canonical
		// record, not just what it passed in.
		existing, err := db.GetUserByID(ctx, u.ID)
		if err != nil {
			return err
		}
		u.IsActive = existing.IsActive
		u.CreatedAt = existing.CreatedAt
		return nil
	}

	return db.CreateUser(ctx, u)
}
