// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage is the only implementation; services
// accept these interfaces so tests can substitute their own.
package repository

import (
	"context"

	"github.com/sakif/catalog-server/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a new user. A users.email uniqueness violation is
	// reported as apperror.ErrConflict so the caller can re-read the row
	// that won the race.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail looks a user up by exact email match.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// SetActivated flips the activation flag for the given user.
	SetActivated(ctx context.Context, id string, activated bool) error
}

// TagRepository persists tags. Create and Rename surface a tag-name
// uniqueness violation as apperror.ErrDuplicateName, distinct from
// apperror.ErrNotFound.
type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetByID(ctx context.Context, id string) (*model.Tag, error)
	// GetByName resolves a tag by name and requires exactly one match;
	// zero or multiple matches both report apperror.ErrNotFound.
	GetByName(ctx context.Context, name string) (*model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
	Rename(ctx context.Context, id, name string) error
	// Delete removes the tag and all of its item associations in one
	// transaction. The associated items are untouched.
	Delete(ctx context.Context, id string) error
}

// ItemRepository persists items together with their tag sets.
type ItemRepository interface {
	// Create inserts the item and associates it with the subset of tagIDs
	// that exist in the store; unknown ids are dropped.
	Create(ctx context.Context, item *model.Item, tagIDs []string) error
	GetByID(ctx context.Context, id string) (*model.Item, error)
	// GetByNameAndID requires exactly one match, like TagRepository.GetByName.
	GetByNameAndID(ctx context.Context, name, id string) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	// ListByTag returns the items associated with the given tag.
	ListByTag(ctx context.Context, tagID string) ([]model.Item, error)
	// ListRecent returns up to limit items, most recently updated first.
	ListRecent(ctx context.Context, limit int) ([]model.Item, error)
	// Update rewrites the item's fields and replaces its tag set, and
	// refreshes updated_on. Unknown tag ids are dropped, as in Create.
	Update(ctx context.Context, item *model.Item, tagIDs []string) error
	// Delete removes the item and its tag associations in one transaction.
	Delete(ctx context.Context, id string) error
}
