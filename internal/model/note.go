package model

import "time"

// Note is a private text note owned by a single user.
//
// Notes share the Bookmark ownership rules (OwnerID forced at creation,
// immutable) and the same unparsed comma-separated Tags string, but they
// have no crawl dimension — a note is never exposed outside its owner's
// scope, there is no public projection of notes at all.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      string    `json:"tags"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Owner returns the owning user's ID.
func (n *Note) Owner() string { return n.OwnerID }
