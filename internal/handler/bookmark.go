package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"linkvault/internal/apperror"
	"linkvault/internal/auth"
	"linkvault/internal/service"
)

// BookmarkHandler exposes bookmark CRUD over HTTP.
//
// Every route here runs behind RequireAuth + RequireActive, so the caller
// identity is always in the request context. The handler's job is framing
// only: parse the request, call the service, map the result — ownership and
// validation rules all live one layer down.
type BookmarkHandler struct {
	bookmarks *service.BookmarkService
	logger    *slog.Logger
}

// NewBookmarkHandler creates a BookmarkHandler.
func NewBookmarkHandler(bookmarks *service.BookmarkService, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks, logger: logger}
}

// HandleList returns the caller's bookmarks.
//
// HTTP: GET /api/bookmarks?search=&tag=&limit=&skip=
//
// limit defaults to 100 and must stay in [1,100]; skip defaults to 0. Bad
// values are a 422, not silently corrected — see parseListFilter.
func (h *BookmarkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	bookmarks, err := h.bookmarks.List(r.Context(), callerID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarks)
}

// HandleCreate saves a new bookmark owned by the caller.
//
// HTTP: POST /api/bookmarks
// BODY: {"title": "...", "url": "...", "description": "...", "tags": "go,web", "crawlInterval": "daily"}
//
// Any ownerId in the body is simply not decoded — BookmarkInput has no such
// field, so there is nothing a client could overwrite.
func (h *BookmarkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	var in service.BookmarkInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid bookmark JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	bookmark, err := h.bookmarks.Create(r.Context(), callerID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bookmark)
}

// HandleGet returns one bookmark by ID.
//
// HTTP: GET /api/bookmarks/{id}
// 404 covers both "no such bookmark" and "someone else's bookmark".
func (h *BookmarkHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	bookmark, err := h.bookmarks.Get(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmark)
}

// HandleUpdate applies a partial update.
//
// HTTP: PATCH /api/bookmarks/{id} (PUT is also routed here)
//
// Partial means partial: only keys present in the body are touched. An
// explicit null clears description/tags and is rejected on required fields.
func (h *BookmarkHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	var patch service.BookmarkPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.Warn("invalid bookmark patch JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	bookmark, err := h.bookmarks.Update(r.Context(), callerID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmark)
}

// HandleDelete removes a bookmark.
//
// HTTP: DELETE /api/bookmarks/{id}
// 204 No Content on success — successful deletion has nothing to say.
func (h *BookmarkHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	if err := h.bookmarks.Delete(r.Context(), callerID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseListFilter reads search/tag/limit/skip query parameters.
//
// Absent limit/skip get the documented defaults (100 / 0). Present values
// must parse as integers; range checks happen in the service so that every
// caller of the service — not just HTTP — gets the same rules.
func parseListFilter(r *http.Request) (service.ListFilter, error) {
	q := r.URL.Query()

	f := service.ListFilter{
		Search: q.Get("search"),
		Tag:    q.Get("tag"),
		Limit:  service.DefaultListLimit,
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apperror.ValidationFailed("limit", "limit must be an integer")
		}
		f.Limit = n
	}

	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apperror.ValidationFailed("skip", "skip must be an integer")
		}
		f.Offset = n
	}

	return f, nil
}
