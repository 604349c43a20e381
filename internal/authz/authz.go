// Package authz is the authorization policy: pure decision logic over a
// principal and a target, with no HTTP and no database access.
//
// The checks run in a fixed order, and the order is part of the contract:
// it decides which error a caller sees. For any mutation on an owned entity:
//
//	1. Mutate: principal is a known, signed-in user  → ErrAuthRequired
//	2. Mutate: principal's account is activated      → ErrDeactivated
//	3. (caller resolves the target; failure there is ErrNotFound,
//	   reported before ownership can be evaluated)
//	4. Owned: principal is admin or owns the target  → ErrNotOwner
//
// Services call Mutate before touching the store, so unauthenticated or
// deactivated callers never trigger an entity lookup, and call Owned only
// after the target resolved to exactly one row.
//
// Admin is the separate check for user-management operations: it needs the
// principal to be signed in and an admin, and deliberately does NOT require
// activation; admins are exempt from activation gating.
package authz

import (
	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/model"
)

// Mutate runs the authentication and activation checks, in that order.
// A nil principal means the request is anonymous.
func Mutate(principal *model.User) error {
	if principal == nil {
		return apperror.AuthRequired()
	}
	if !principal.Activated {
		return apperror.Deactivated()
	}
	return nil
}

// Owned checks that the principal may modify an entity owned by ownerID.
// Admins bypass ownership for every owned-entity operation.
//
// Owned assumes Mutate already passed and the target resolved; it only
// answers the ownership question.
func Owned(principal *model.User, resource, ownerID string) error {
	if principal.Admin {
		return nil
	}
	if principal.ID != ownerID {
		return apperror.NotOwner(resource)
	}
	return nil
}

// Admin gates user-management operations (listing users, toggling
// activation). Activation is not checked here.
func Admin(principal *model.User) error {
	if principal == nil {
		return apperror.AuthRequired()
	}
	if !principal.Admin {
		return apperror.AdminOnly()
	}
	return nil
}
