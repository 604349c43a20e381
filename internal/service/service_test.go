package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sakif/catalog-server/internal/auth"
	"github.com/sakif/catalog-server/internal/model"
	"github.com/sakif/catalog-server/internal/repository/sqlite"
)

// testEnv wires the services against a real in-memory database, the same
// way the server does, so service tests cover the store semantics too.
type testEnv struct {
	db      *sqlite.DB
	users   *sqlite.UserStore
	auths   *AuthService
	catalog *CatalogService
	admin   *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("creating token service: %v", err)
	}

	users := sqlite.NewUserStore(db)
	return &testEnv{
		db:      db,
		users:   users,
		auths:   NewAuthService(users, tokens, logger),
		catalog: NewCatalogService(sqlite.NewTagStore(db), sqlite.NewItemStore(db), logger),
		admin:   NewAdminService(users, logger),
	}
}

// user creates an activated, non-admin account.
func (e *testEnv) user(t *testing.T, email string) *model.User {
	t.Helper()

	u := &model.User{Name: "Test User", Email: email, Activated: true}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return u
}

func (e *testEnv) adminUser(t *testing.T, email string) *model.User {
	t.Helper()

	u := &model.User{Name: "Admin", Email: email, Activated: true, Admin: true}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("creating admin %s: %v", email, err)
	}
	return u
}

func (e *testEnv) deactivatedUser(t *testing.T, email string) *model.User {
	t.Helper()

	u := e.user(t, email)
	if err := e.users.SetActivated(context.Background(), u.ID, false); err != nil {
		t.Fatalf("deactivating user %s: %v", email, err)
	}
	u.Activated = false
	return u
}
