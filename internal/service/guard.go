// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces ownership, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// The services in this package never see HTTP and never write SQL. They
// receive repository interfaces (not the concrete sqlite type), which is
// what lets the tests run against hand-written in-memory mocks.
//
// This file holds the one rule the whole system leans on: every read,
// mutation and delete of an owned resource goes through getOwned.
package service

import (
	"context"
	"strings"

	"linkvault/internal/apperror"
)

// Pagination bounds shared by bookmark and note listings. A limit outside
// [1, MaxListLimit] is rejected, not clamped — a caller asking for 500 rows
// should find out their request is wrong, not silently receive 100.
const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

// owned is satisfied by any resource that carries an owner reference.
// model.Bookmark and model.Note both implement it via their Owner() method.
type owned interface {
	Owner() string
}

// getOwned loads a resource by ID and verifies the caller owns it.
//
// THE OWNERSHIP INVARIANT, IN ONE PLACE:
// A row that doesn't exist and a row owned by someone else both come back as
// the SAME NotFound error. If "not yours" were a distinct error (403), an
// attacker could sweep IDs and learn which ones exist. Collapsing the two
// cases makes other users' resources unobservable.
//
// The check is generic over the resource kind so bookmark and note services
// can't drift apart: there is exactly one owner-match branch in the
// codebase.
func getOwned[T owned](ctx context.Context, kind, id, callerID string, load func(context.Context, string) (T, error)) (T, error) {
	var zero T

	if strings.TrimSpace(id) == "" {
		return zero, apperror.ValidationFailed("id", kind+" ID is required")
	}

	res, err := load(ctx, id)
	if err != nil {
		return zero, err
	}

	if res.Owner() != callerID {
		return zero, apperror.NotFound(kind, id)
	}

	return res, nil
}

// validatePagination enforces the listing bounds: skip must be >= 0 and
// limit must be within [1, MaxListLimit].
func validatePagination(limit, offset int) error {
	if limit < 1 || limit > MaxListLimit {
		return apperror.ValidationFailed("limit", "limit must be between 1 and 100")
	}
	if offset < 0 {
		return apperror.ValidationFailed("skip", "skip must not be negative")
	}
	return nil
}
