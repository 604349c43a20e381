package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/catalog-server/internal/apperror"
)

func TestListUsers_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "ada@example.com")

	if _, err := env.admin.ListUsers(context.Background(), nil); !errors.Is(err, apperror.ErrAuthRequired) {
		t.Errorf("ListUsers(nil) = %v, want ErrAuthRequired", err)
	}
	if _, err := env.admin.ListUsers(context.Background(), u); !errors.Is(err, apperror.ErrAdminOnly) {
		t.Errorf("ListUsers(non-admin) = %v, want ErrAdminOnly", err)
	}
}

func TestListUsers_Admin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t, "admin@example.com")
	env.user(t, "ada@example.com")

	users, err := env.admin.ListUsers(context.Background(), admin)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("ListUsers returned %d users, want 2", len(users))
	}
}

func TestSetUserActivation_Toggle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t, "admin@example.com")
	target := env.user(t, "ada@example.com")

	updated, err := env.admin.SetUserActivation(context.Background(), admin, target.ID, false)
	if err != nil {
		t.Fatalf("SetUserActivation: %v", err)
	}
	if updated.Activated {
		t.Error("returned record should reflect the new state")
	}

	got, err := env.users.GetByID(context.Background(), target.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Activated {
		t.Error("store should hold the deactivated state")
	}

	if _, err := env.admin.SetUserActivation(context.Background(), admin, target.ID, true); err != nil {
		t.Fatalf("re-activating: %v", err)
	}
}

func TestSetUserActivation_AdminTarget(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t, "admin@example.com")
	otherAdmin := env.adminUser(t, "admin2@example.com")

	_, err := env.admin.SetUserActivation(context.Background(), admin, otherAdmin.ID, false)
	if !errors.Is(err, apperror.ErrInvalidTarget) {
		t.Fatalf("SetUserActivation(admin target) = %v, want ErrInvalidTarget", err)
	}

	// No state change on the rejected toggle.
	got, err := env.users.GetByID(context.Background(), otherAdmin.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Activated {
		t.Error("rejected toggle must not change the target's state")
	}
}

func TestSetUserActivation_DeactivatedAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t, "admin@example.com")
	target := env.user(t, "ada@example.com")

	// An admin whose own activated bit is off still holds admin powers.
	if err := env.users.SetActivated(context.Background(), admin.ID, false); err == nil {
		// SetActivated on an admin is allowed at the store level; only the
		// service rejects admin targets.
		admin.Activated = false
	}

	if _, err := env.admin.SetUserActivation(context.Background(), admin, target.ID, false); err != nil {
		t.Errorf("SetUserActivation(deactivated admin) = %v, want success", err)
	}
}

func TestSetUserActivation_MissingTarget(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t, "admin@example.com")

	_, err := env.admin.SetUserActivation(context.Background(), admin, "nope", false)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("SetUserActivation(missing target) = %v, want ErrNotFound", err)
	}
}
