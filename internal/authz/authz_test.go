package authz

import (
	"errors"
	"testing"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/model"
)

func activeUser() *model.User {
	return &model.User{ID: "user-1", Activated: true}
}

func TestMutate_NilPrincipal(t *testing.T) {
	err := Mutate(nil)
	if !errors.Is(err, apperror.ErrAuthRequired) {
		t.Errorf("Mutate(nil) = %v, want ErrAuthRequired", err)
	}
}

func TestMutate_Deactivated(t *testing.T) {
	u := activeUser()
	u.Activated = false

	err := Mutate(u)
	if !errors.Is(err, apperror.ErrDeactivated) {
		t.Errorf("Mutate(deactivated) = %v, want ErrDeactivated", err)
	}
}

func TestMutate_DeactivatedAdmin(t *testing.T) {
	// The admin flag does not bypass the activation gate for mutations.
	u := &model.User{ID: "admin-1", Admin: true, Activated: false}

	err := Mutate(u)
	if !errors.Is(err, apperror.ErrDeactivated) {
		t.Errorf("Mutate(deactivated admin) = %v, want ErrDeactivated", err)
	}
}

func TestMutate_Activated(t *testing.T) {
	if err := Mutate(activeUser()); err != nil {
		t.Errorf("Mutate(active user) = %v, want nil", err)
	}
}

func TestOwned_Owner(t *testing.T) {
	u := activeUser()
	if err := Owned(u, "tag", u.ID); err != nil {
		t.Errorf("Owned(owner) = %v, want nil", err)
	}
}

func TestOwned_NotOwner(t *testing.T) {
	err := Owned(activeUser(), "tag", "someone-else")
	if !errors.Is(err, apperror.ErrNotOwner) {
		t.Errorf("Owned(non-owner) = %v, want ErrNotOwner", err)
	}
}

func TestOwned_AdminBypass(t *testing.T) {
	admin := &model.User{ID: "admin-1", Activated: true, Admin: true}
	if err := Owned(admin, "tag", "someone-else"); err != nil {
		t.Errorf("Owned(admin, foreign resource) = %v, want nil", err)
	}
}

func TestAdmin_NilPrincipal(t *testing.T) {
	err := Admin(nil)
	if !errors.Is(err, apperror.ErrAuthRequired) {
		t.Errorf("Admin(nil) = %v, want ErrAuthRequired", err)
	}
}

func TestAdmin_NonAdmin(t *testing.T) {
	err := Admin(activeUser())
	if !errors.Is(err, apperror.ErrAdminOnly) {
		t.Errorf("Admin(non-admin) = %v, want ErrAdminOnly", err)
	}
}

func TestAdmin_DeactivatedAdmin(t *testing.T) {
	// Admin powers do not depend on the activated bit; otherwise two
	// admins deactivating each other could lock the admin surface.
	u := &model.User{ID: "admin-1", Admin: true, Activated: false}
	if err := Admin(u); err != nil {
		t.Errorf("Admin(deactivated admin) = %v, want nil", err)
	}
}

// TestCheckOrdering pins the order of the pipeline: authentication is
// checked before activation, and activation before ownership. A request
// failing several gates reports the earliest one.
func TestCheckOrdering(t *testing.T) {
	// Unauthenticated non-owner: AuthRequired, never NotOwner.
	if err := Mutate(nil); !errors.Is(err, apperror.ErrAuthRequired) {
		t.Errorf("unauthenticated request: got %v, want ErrAuthRequired", err)
	}

	// Deactivated non-owner: Deactivated, never NotOwner. Callers run
	// Mutate before Owned, so the Owned check is never reached.
	deactivated := &model.User{ID: "user-1", Activated: false}
	if err := Mutate(deactivated); !errors.Is(err, apperror.ErrDeactivated) {
		t.Errorf("deactivated request: got %v, want ErrDeactivated", err)
	}
}
