package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"linkvault/internal/apperror"
	"linkvault/internal/model"
	"linkvault/internal/repository"
)

// FeedService projects public bookmarks into crawler-facing output.
//
// THE ONE SERVICE WITHOUT A CALLER IDENTITY:
// Feeds are the deliberate exception to the ownership model. No method here
// takes a caller ID, and none filters on owner_id — visibility is decided
// purely by each bookmark's crawl interval ("never" = private, anything
// else = public). What leaks out is equally restricted: a FeedEntry carries
// title, url and description, nothing more. Owner IDs, timestamps, tags and
// the interval itself never appear in feed output.
type FeedService struct {
	repo   repository.BookmarkRepository
	logger *slog.Logger
}

// NewFeedService creates a FeedService.
func NewFeedService(repo repository.BookmarkRepository, logger *slog.Logger) *FeedService {
	return &FeedService{
		repo:   repo,
		logger: logger,
	}
}

// FeedEntry is the public projection of a bookmark. Adding a field here
// widens what the whole world can see — treat it as an API contract.
type FeedEntry struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// IntervalInfo pairs a crawl interval key with its fixed description, for
// the feed index endpoint.
type IntervalInfo struct {
	Interval    string `json:"interval"`
	Description string `json:"description"`
}

// IntervalFeed is one interval's worth of feed: the key, its description,
// and every bookmark currently on that cadence.
type IntervalFeed struct {
	Interval    string      `json:"interval"`
	Description string      `json:"description"`
	Bookmarks   []FeedEntry `json:"bookmarks"`
}

// feedIntervals are the keys a crawler can ask for, in presentation order.
// "never" is excluded on purpose: it means "do not crawl", so there is
// nothing to feed.
var feedIntervals = []string{
	model.IntervalDaily,
	model.IntervalWeekly,
	model.IntervalMonthly,
	model.IntervalOnce,
}

// intervalDescriptions are fixed sentences, one per interval — static
// strings, never derived from data.
var intervalDescriptions = map[string]string{
	model.IntervalDaily:   "Fetch these URLs once per day.",
	model.IntervalWeekly:  "Fetch these URLs once per week.",
	model.IntervalMonthly: "Fetch these URLs once per month.",
	model.IntervalOnce:    "Fetch these URLs a single time, then never again.",
}

// PlainURLs returns every public bookmark's URL, one per line,
// newest-created first. This is the simplest possible crawler input: pipe
// it straight into wget.
func (s *FeedService) PlainURLs(ctx context.Context) (string, error) {
	bookmarks, err := s.repo.ListCrawlable(ctx)
	if err != nil {
		s.logger.Error("failed to build plain feed", slog.String("error", err.Error()))
		return "", fmt.Errorf("building plain feed: %w", err)
	}

	urls := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		urls = append(urls, b.URL)
	}

	return strings.Join(urls, "\n"), nil
}

// Entries returns the structured form of the flat feed: every public
// bookmark as a FeedEntry, newest-created first.
func (s *FeedService) Entries(ctx context.Context) ([]FeedEntry, error) {
	bookmarks, err := s.repo.ListCrawlable(ctx)
	if err != nil {
		s.logger.Error("failed to build structured feed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("building structured feed: %w", err)
	}

	return project(bookmarks), nil
}

// Intervals enumerates the four crawlable interval keys with their
// descriptions. No storage access — the set is static.
func (s *FeedService) Intervals() []IntervalInfo {
	infos := make([]IntervalInfo, 0, len(feedIntervals))
	for _, key := range feedIntervals {
		infos = append(infos, IntervalInfo{
			Interval:    key,
			Description: intervalDescriptions[key],
		})
	}
	return infos
}

// ByInterval returns the feed for one crawl interval.
//
// The key is checked against the closed four-key set up front: "yearly" or
// "never" is a validation error, decided without touching storage. An
// unknown key is NOT a lookup miss — the set of intervals is fixed, so the
// error says "this key can never exist", not "nothing here right now".
func (s *FeedService) ByInterval(ctx context.Context, interval string) (*IntervalFeed, error) {
	desc, ok := intervalDescriptions[interval]
	if !ok {
		return nil, apperror.ValidationFailed("interval",
			"interval must be one of: daily, weekly, monthly, once")
	}

	bookmarks, err := s.repo.ListByInterval(ctx, interval)
	if err != nil {
		s.logger.Error("failed to build interval feed",
			slog.String("interval", interval),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("building %s feed: %w", interval, err)
	}

	return &IntervalFeed{
		Interval:    interval,
		Description: desc,
		Bookmarks:   project(bookmarks),
	}, nil
}

// project reduces bookmarks to their public shape.
func project(bookmarks []model.Bookmark) []FeedEntry {
	entries := make([]FeedEntry, 0, len(bookmarks))
	for _, b := range bookmarks {
		entries = append(entries, FeedEntry{
			Title:       b.Title,
			URL:         b.URL,
			Description: b.Description,
		})
	}
	return entries
}
