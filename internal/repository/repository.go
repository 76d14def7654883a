package repository

import (
	"context"

	"linkvault/internal/model"
)

// ListFilter describes an owner-scoped, filtered, paginated listing.
//
// Search and Tag are optional (empty string = no filter). Both are
// case-insensitive substring matches: Search is OR'd across the resource's
// text fields (title/description/url for bookmarks, title/content for
// notes), Tag matches anywhere inside the raw comma-separated tags string.
// When both are present they are AND'd.
//
// Limit and Offset are assumed pre-validated by the service layer; the
// repository applies them verbatim.
type ListFilter struct {
	Search string
	Tag    string
	Limit  int
	Offset int
}

// BookmarkRepository is the persistence contract for bookmarks.
//
// GetByID is deliberately unscoped — the service layer loads the row and
// runs the ownership check itself so that "absent" and "not yours" collapse
// into one NotFound. ListByOwner, by contrast, carries the owner predicate
// in the query: a listing must never be able to return foreign rows.
//
// ListCrawlable and ListByInterval serve the public feed projection: they
// select on crawl cadence across all owners and are the only cross-owner
// reads in the system.
type BookmarkRepository interface {
	Create(ctx context.Context, b *model.Bookmark) error
	GetByID(ctx context.Context, id string) (*model.Bookmark, error)
	ListByOwner(ctx context.Context, ownerID string, f ListFilter) ([]model.Bookmark, error)
	ListCrawlable(ctx context.Context) ([]model.Bookmark, error)
	ListByInterval(ctx context.Context, interval string) ([]model.Bookmark, error)
	Update(ctx context.Context, b *model.Bookmark) error
	Delete(ctx context.Context, id string) error
}

// NoteRepository is the persistence contract for notes. Same shape as
// BookmarkRepository minus the feed queries — notes have no public surface.
//
// Method names carry the resource kind (CreateNote, not Create) because one
// concrete type implements all three repository interfaces and Go methods
// can't overload on parameter types.
type NoteRepository interface {
	CreateNote(ctx context.Context, n *model.Note) error
	GetNoteByID(ctx context.Context, id string) (*model.Note, error)
	ListNotesByOwner(ctx context.Context, ownerID string, f ListFilter) ([]model.Note, error)
	UpdateNote(ctx context.Context, n *model.Note) error
	DeleteNote(ctx context.Context, id string) error
}

// UserRepository is the persistence contract for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpsertGitHubUser(ctx context.Context, u *model.User) error
}
