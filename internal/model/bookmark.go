// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Crawl intervals a bookmark can carry. The interval tells an external
// crawler how often to refetch the URL; IntervalNever means "do not crawl"
// and keeps the bookmark out of every public feed.
const (
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
	IntervalOnce    = "once"
	IntervalNever   = "never"
)

// DefaultCrawlInterval is applied when a bookmark is created without an
// explicit interval.
const DefaultCrawlInterval = IntervalWeekly

// ValidCrawlInterval reports whether s is one of the five accepted interval
// keys. This is a closed set — there is no way to register new intervals at
// runtime.
func ValidCrawlInterval(s string) bool {
	switch s {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalOnce, IntervalNever:
		return true
	}
	return false
}

// Bookmark represents a saved URL owned by a single user.
//
// The `json:"..."` tags tell Go's encoding/json package how to serialize/deserialize
// this struct to/from JSON. This is called a "struct tag" — metadata attached to fields.
//
// TAGS ARE AN UNPARSED STRING:
// Tags is a raw comma-separated string ("go,web,reference"), not a slice.
// Tag filtering is a case-insensitive substring match against this string —
// deliberately loose, so filtering on "go" also matches "golang".
//
// OWNERSHIP:
// OwnerID is set exactly once, at creation, from the authenticated caller.
// It is never accepted as client input and never changes afterwards.
type Bookmark struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	Description   string    `json:"description"`
	Tags          string    `json:"tags"`
	CrawlInterval string    `json:"crawlInterval"`
	OwnerID       string    `json:"ownerId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Owner returns the owning user's ID. Bookmark and Note both expose this so
// the service layer can run one ownership check over either kind.
func (b *Bookmark) Owner() string { return b.OwnerID }

// FeedEligible reports whether this bookmark may appear in public feed
// output. The single visibility rule for the whole system: anything except
// IntervalNever is public.
func (b *Bookmark) FeedEligible() bool { return b.CrawlInterval != IntervalNever }
