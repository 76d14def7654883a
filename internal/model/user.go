// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Users register with email + password, or sign in through GitHub OAuth.
// We generate our own internal string ID (xid) rather than exposing either
// the email or GitHub's numbering scheme as a primary key.
//
// WHY PasswordHash `json:"-"`?
// The `-` tag tells encoding/json to NEVER serialize this field. A user
// record is returned by several endpoints (/api/me, register) and the bcrypt
// hash must not leak into any of them.
//
// WHY GitHubID *int64 (a pointer)?
// Password-registered users have no GitHub identity at all. A pointer lets
// the column be NULL for them while the UNIQUE index still guarantees one
// GitHub account maps to exactly one local account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	GitHubID     *int64    `json:"-"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
