package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"linkvault/internal/apperror"
	"linkvault/internal/service"
)

// FeedHandler serves the public crawl feeds.
//
// NO AUTH, ON PURPOSE:
// These routes are mounted outside the auth middleware and none of them
// reads a caller identity. What they expose is bounded by the FeedService
// projection — title, url, description of crawl-eligible bookmarks, nothing
// else — so there is nothing here worth authenticating.
type FeedHandler struct {
	feeds  *service.FeedService
	logger *slog.Logger
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(feeds *service.FeedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feeds: feeds, logger: logger}
}

// HandlePlain returns every public bookmark URL, one per line.
//
// HTTP: GET /seed
// RESPONSE: text/plain — the whole feed is wget-able:
//
//	https://example.com/a
//	https://example.com/b
func (h *FeedHandler) HandlePlain(w http.ResponseWriter, r *http.Request) {
	urls, err := h.feeds.PlainURLs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(urls)); err != nil {
		h.logger.Error("failed to write plain feed", slog.String("error", err.Error()))
	}
}

// HandleEntries returns the structured flat feed.
//
// HTTP: GET /seed.json
// RESPONSE: [{"title": "...", "url": "...", "description": "..."}, ...]
func (h *FeedHandler) HandleEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.feeds.Entries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleIntervals enumerates the four crawlable intervals.
//
// HTTP: GET /seed/intervals
func (h *FeedHandler) HandleIntervals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feeds.Intervals())
}

// HandleByInterval returns one interval's feed.
//
// HTTP: GET /seed/{interval}
//
// WHY 404 AND NOT 422 FOR A BAD KEY?
// The service reports an unknown interval as a validation error (the key
// set is closed). But here the key is a URL path segment, and to an HTTP
// client /seed/yearly is simply a path that doesn't exist — so this handler
// remaps that one error to 404. Query/body validation elsewhere stays 422.
func (h *FeedHandler) HandleByInterval(w http.ResponseWriter, r *http.Request) {
	feed, err := h.feeds.ByInterval(r.Context(), r.PathValue("interval"))
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "no such feed interval",
			})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feed)
}
