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

// Field length limits, matching the storage schema.
const (
	MaxTitleLength = 255
	MaxURLLength   = 2048
	MaxTagsLength  = 500
)

// BookmarkService handles business logic for bookmarks: input validation,
// the ownership guard, and crawl-interval rules. It is the only way the
// rest of the application touches bookmark storage.
type BookmarkService struct {
	repo   repository.BookmarkRepository
	logger *slog.Logger
}

// NewBookmarkService creates a BookmarkService.
//
// The repo parameter is the repository INTERFACE, not *sqlite.DB — the
// caller decides which implementation to inject (sqlite in production, a
// mock in tests).
func NewBookmarkService(repo repository.BookmarkRepository, logger *slog.Logger) *BookmarkService {
	return &BookmarkService{
		repo:   repo,
		logger: logger,
	}
}

// BookmarkInput carries the client-suppliable fields for creating a
// bookmark. Note what is NOT here: no owner, no ID, no timestamps. The
// owner comes from the authenticated caller only — an owner field in the
// request body has nowhere to land.
type BookmarkInput struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Description   string `json:"description"`
	Tags          string `json:"tags"`
	CrawlInterval string `json:"crawlInterval"`
}

// BookmarkPatch is a partial update. Every field is a Nullable so the
// service can tell "omitted" (keep the stored value) from "explicit null"
// (clear it — only allowed on optional fields).
type BookmarkPatch struct {
	Title         model.Nullable[string] `json:"title"`
	URL           model.Nullable[string] `json:"url"`
	Description   model.Nullable[string] `json:"description"`
	Tags          model.Nullable[string] `json:"tags"`
	CrawlInterval model.Nullable[string] `json:"crawlInterval"`
}

// ListFilter is the caller-facing filter for List. Limit/Offset are
// validated here, not clamped; Search and Tag pass through to the query.
type ListFilter struct {
	Search string
	Tag    string
	Limit  int
	Offset int
}

// Create validates and saves a new bookmark owned by ownerID.
//
// The crawl interval defaults to weekly when unset; when set it must be one
// of the five known keys. Setting it to "never" at creation is legal — it
// just means the bookmark starts out invisible to the public feeds.
func (s *BookmarkService) Create(ctx context.Context, ownerID string, in BookmarkInput) (*model.Bookmark, error) {
	if ownerID == "" {
		return nil, apperror.Unauthenticated("caller identity is required")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}

	url := strings.TrimSpace(in.URL)
	if url == "" {
		return nil, apperror.ValidationFailed("url", "url is required")
	}
	if len(url) > MaxURLLength {
		return nil, apperror.ValidationFailed("url",
			fmt.Sprintf("url must be %d characters or less", MaxURLLength))
	}

	if len(in.Tags) > MaxTagsLength {
		return nil, apperror.ValidationFailed("tags",
			fmt.Sprintf("tags must be %d characters or less", MaxTagsLength))
	}

	interval := in.CrawlInterval
	if interval == "" {
		interval = model.DefaultCrawlInterval
	}
	if !model.ValidCrawlInterval(interval) {
		return nil, apperror.ValidationFailed("crawlInterval",
			"crawl interval must be one of: daily, weekly, monthly, once, never")
	}

	bookmark := &model.Bookmark{
		Title:         title,
		URL:           url,
		Description:   strings.TrimSpace(in.Description),
		Tags:          strings.TrimSpace(in.Tags),
		CrawlInterval: interval,
		OwnerID:       ownerID,
	}

	if err := s.repo.Create(ctx, bookmark); err != nil {
		s.logger.Error("failed to create bookmark",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating bookmark: %w", err)
	}

	s.logger.Info("bookmark created",
		slog.String("id", bookmark.ID),
		slog.String("ownerID", ownerID),
	)

	return bookmark, nil
}

// Get returns the bookmark with the given ID if the caller owns it.
// A foreign or missing bookmark is NotFound either way — see getOwned.
func (s *BookmarkService) Get(ctx context.Context, callerID, id string) (*model.Bookmark, error) {
	return getOwned(ctx, "bookmark", id, callerID, s.repo.GetByID)
}

// List returns the caller's bookmarks matching the filter, newest-created
// first. Results can only ever be the caller's own rows: the owner
// predicate is part of the query itself, not a post-filter.
func (s *BookmarkService) List(ctx context.Context, callerID string, f ListFilter) ([]model.Bookmark, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("caller identity is required")
	}
	if err := validatePagination(f.Limit, f.Offset); err != nil {
		return nil, err
	}

	bookmarks, err := s.repo.ListByOwner(ctx, callerID, repository.ListFilter{
		Search: strings.TrimSpace(f.Search),
		Tag:    strings.TrimSpace(f.Tag),
		Limit:  f.Limit,
		Offset: f.Offset,
	})
	if err != nil {
		s.logger.Error("failed to list bookmarks",
			slog.String("ownerID", callerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}

	return bookmarks, nil
}

// Update applies a partial update to a bookmark the caller owns.
//
// PATCH SEMANTICS:
//   - field omitted        → stored value untouched
//   - field present        → validated, then replaces the stored value
//   - field explicitly null → clears description/tags; rejected for
//     title, url and crawlInterval (they can't be empty)
//
// An empty patch is legal and changes nothing except updated_at, which the
// repository bumps on every write.
func (s *BookmarkService) Update(ctx context.Context, callerID, id string, patch BookmarkPatch) (*model.Bookmark, error) {
	bookmark, err := getOwned(ctx, "bookmark", id, callerID, s.repo.GetByID)
	if err != nil {
		return nil, err
	}

	if patch.Title.Cleared() {
		return nil, apperror.ValidationFailed("title", "title cannot be null")
	}
	if patch.Title.Provided() {
		title := strings.TrimSpace(patch.Title.Value)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title is required")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		bookmark.Title = title
	}

	if patch.URL.Cleared() {
		return nil, apperror.ValidationFailed("url", "url cannot be null")
	}
	if patch.URL.Provided() {
		url := strings.TrimSpace(patch.URL.Value)
		if url == "" {
			return nil, apperror.ValidationFailed("url", "url is required")
		}
		if len(url) > MaxURLLength {
			return nil, apperror.ValidationFailed("url",
				fmt.Sprintf("url must be %d characters or less", MaxURLLength))
		}
		bookmark.URL = url
	}

	if patch.Description.Cleared() {
		bookmark.Description = ""
	} else if patch.Description.Provided() {
		bookmark.Description = strings.TrimSpace(patch.Description.Value)
	}

	if patch.Tags.Cleared() {
		bookmark.Tags = ""
	} else if patch.Tags.Provided() {
		if len(patch.Tags.Value) > MaxTagsLength {
			return nil, apperror.ValidationFailed("tags",
				fmt.Sprintf("tags must be %d characters or less", MaxTagsLength))
		}
		bookmark.Tags = strings.TrimSpace(patch.Tags.Value)
	}

	if patch.CrawlInterval.Cleared() {
		return nil, apperror.ValidationFailed("crawlInterval", "crawl interval cannot be null")
	}
	if patch.CrawlInterval.Provided() {
		if !model.ValidCrawlInterval(patch.CrawlInterval.Value) {
			return nil, apperror.ValidationFailed("crawlInterval",
				"crawl interval must be one of: daily, weekly, monthly, once, never")
		}
		bookmark.CrawlInterval = patch.CrawlInterval.Value
	}

	if err := s.repo.Update(ctx, bookmark); err != nil {
		s.logger.Error("failed to update bookmark",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating bookmark: %w", err)
	}

	s.logger.Info("bookmark updated", slog.String("id", bookmark.ID))

	return bookmark, nil
}

// Delete removes a bookmark the caller owns. NotFound for anything the
// caller can't see, exactly like Get.
func (s *BookmarkService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := getOwned(ctx, "bookmark", id, callerID, s.repo.GetByID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("bookmark deleted", slog.String("id", id))
	return nil
}
