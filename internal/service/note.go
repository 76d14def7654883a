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

// NoteService handles business logic for notes. Structurally a sibling of
// BookmarkService — same ownership guard, same pagination rules — minus
// everything crawl-related, because notes have no public surface.
type NoteService struct {
	repo   repository.NoteRepository
	logger *slog.Logger
}

// NewNoteService creates a NoteService.
func NewNoteService(repo repository.NoteRepository, logger *slog.Logger) *NoteService {
	return &NoteService{
		repo:   repo,
		logger: logger,
	}
}

// NoteInput carries the client-suppliable fields for creating a note.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
}

// NotePatch is a partial update; see BookmarkPatch for the Nullable
// semantics. Content and tags are clearable, title is not.
type NotePatch struct {
	Title   model.Nullable[string] `json:"title"`
	Content model.Nullable[string] `json:"content"`
	Tags    model.Nullable[string] `json:"tags"`
}

// Create validates and saves a new note owned by ownerID.
func (s *NoteService) Create(ctx context.Context, ownerID string, in NoteInput) (*model.Note, error) {
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
	if len(in.Tags) > MaxTagsLength {
		return nil, apperror.ValidationFailed("tags",
			fmt.Sprintf("tags must be %d characters or less", MaxTagsLength))
	}

	note := &model.Note{
		Title:   title,
		Content: in.Content,
		Tags:    strings.TrimSpace(in.Tags),
		OwnerID: ownerID,
	}

	if err := s.repo.CreateNote(ctx, note); err != nil {
		s.logger.Error("failed to create note",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating note: %w", err)
	}

	s.logger.Info("note created",
		slog.String("id", note.ID),
		slog.String("ownerID", ownerID),
	)

	return note, nil
}

// Get returns the note with the given ID if the caller owns it.
func (s *NoteService) Get(ctx context.Context, callerID, id string) (*model.Note, error) {
	return getOwned(ctx, "note", id, callerID, s.repo.GetNoteByID)
}

// List returns the caller's notes matching the filter, most recently
// updated first.
func (s *NoteService) List(ctx context.Context, callerID string, f ListFilter) ([]model.Note, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("caller identity is required")
	}
	if err := validatePagination(f.Limit, f.Offset); err != nil {
		return nil, err
	}

	notes, err := s.repo.ListNotesByOwner(ctx, callerID, repository.ListFilter{
		Search: strings.TrimSpace(f.Search),
		Tag:    strings.TrimSpace(f.Tag),
		Limit:  f.Limit,
		Offset: f.Offset,
	})
	if err != nil {
		s.logger.Error("failed to list notes",
			slog.String("ownerID", callerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	return notes, nil
}

// Update applies a partial update to a note the caller owns. An empty patch
// changes nothing but updated_at.
func (s *NoteService) Update(ctx context.Context, callerID, id string, patch NotePatch) (*model.Note, error) {
	note, err := getOwned(ctx, "note", id, callerID, s.repo.GetNoteByID)
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
		note.Title = title
	}

	if patch.Content.Cleared() {
		note.Content = ""
	} else if patch.Content.Provided() {
		note.Content = patch.Content.Value
	}

	if patch.Tags.Cleared() {
		note.Tags = ""
	} else if patch.Tags.Provided() {
		if len(patch.Tags.Value) > MaxTagsLength {
			return nil, apperror.ValidationFailed("tags",
				fmt.Sprintf("tags must be %d characters or less", MaxTagsLength))
		}
		note.Tags = strings.TrimSpace(patch.Tags.Value)
	}

	if err := s.repo.UpdateNote(ctx, note); err != nil {
		s.logger.Error("failed to update note",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating note: %w", err)
	}

	s.logger.Info("note updated", slog.String("id", note.ID))

	return note, nil
}

// Delete removes a note the caller owns.
func (s *NoteService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := getOwned(ctx, "note", id, callerID, s.repo.GetNoteByID); err != nil {
		return err
	}

	if err := s.repo.DeleteNote(ctx, id); err != nil {
		return err
	}

	s.logger.Info("note deleted", slog.String("id", id))
	return nil
}
