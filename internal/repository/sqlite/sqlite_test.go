package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/catalog-server/internal/model"
)

// newTestDB creates an in-memory database that is torn down with the test.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// seedUser inserts a user and returns it. Tags and items carry a foreign
// key to users, so most tests need one.
func seedUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()

	u := &model.User{
		Name:      "Test User",
		Email:     email,
		Activated: true,
	}
	if err := NewUserStore(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return u
}

// seedTag inserts a tag owned by userID and returns it.
func seedTag(t *testing.T, db *DB, userID, name string) *model.Tag {
	t.Helper()

	tag := &model.Tag{Name: name, UserID: userID}
	if err := NewTagStore(db).Create(context.Background(), tag); err != nil {
		t.Fatalf("seeding tag %s: %v", name, err)
	}
	return tag
}

func TestInPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "(?)"},
		{2, "(?, ?)"},
		{3, "(?, ?, ?)"},
	}
	for _, tt := range tests {
		if got := inPlaceholders(tt.n); got != tt.want {
			t.Errorf("inPlaceholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
