// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Identity comes from Google OAuth: a user record is created on the first
// successful login for a given email and looked up by exact email match on
// every subsequent login. The UNIQUE constraint on email in the DB is what
// guarantees one account per Google identity; see service.ResolveOrCreateUser.
//
// Activated gates mutations only: a deactivated user can still browse the
// catalog but every create/edit/delete is denied. Admin is never changed
// through the application; it is flipped offline (cmd/mkadmin).
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Picture   string    `json:"picture,omitempty"` // profile picture URL (may be empty)
	Activated bool      `json:"activated"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
