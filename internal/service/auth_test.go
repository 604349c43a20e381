package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/auth"
	"github.com/sakif/catalog-server/internal/model"
)

func TestResolveOrCreateUser_FirstLogin(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.auths.ResolveOrCreateUser(context.Background(), "ada@example.com", "Ada", "https://pic")
	if err != nil {
		t.Fatalf("ResolveOrCreateUser: %v", err)
	}

	if u.ID == "" {
		t.Error("first login should create a user with an id")
	}
	if !u.Activated {
		t.Error("new accounts start activated")
	}
	if u.Admin {
		t.Error("new accounts are never admin")
	}
	if u.Email != "ada@example.com" || u.Name != "Ada" {
		t.Errorf("profile not captured: %+v", u)
	}
}

func TestResolveOrCreateUser_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.auths.ResolveOrCreateUser(context.Background(), "ada@example.com", "Ada", "")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	// A later login with a changed display name maps to the same account
	// and does not overwrite the stored profile.
	second, err := env.auths.ResolveOrCreateUser(context.Background(), "ada@example.com", "Ada Lovelace", "")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second login resolved to %s, want %s", second.ID, first.ID)
	}
	if second.Name != "Ada" {
		t.Errorf("stored name = %q, want original %q", second.Name, "Ada")
	}
}

func TestResolveOrCreateUser_Concurrent(t *testing.T) {
	env := newTestEnv(t)

	const logins = 10
	ids := make([]string, logins)
	errs := make([]error, logins)

	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := env.auths.ResolveOrCreateUser(context.Background(), "ada@example.com", "Ada", "")
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = u.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < logins; i++ {
		if errs[i] != nil {
			t.Fatalf("login %d failed: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("login %d resolved to %s, want %s", i, ids[i], ids[0])
		}
	}

	users, err := env.users.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("store holds %d users after concurrent logins, want 1", len(users))
	}
}

// conflictUserRepo simulates losing the insert race: the first lookup
// misses, the create hits the unique constraint, and the re-read finds the
// row the winner inserted.
type conflictUserRepo struct {
	winner     *model.User
	lookups    int
	createErrs int
}

func (r *conflictUserRepo) Create(ctx context.Context, user *model.User) error {
	r.createErrs++
	return apperror.Conflict("user", user.Email)
}

func (r *conflictUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return nil, apperror.NotFound("user", id)
}

func (r *conflictUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, apperror.NotFound("user", email)
	}
	return r.winner, nil
}

func (r *conflictUserRepo) List(ctx context.Context) ([]model.User, error) {
	return nil, nil
}

func (r *conflictUserRepo) SetActivated(ctx context.Context, id string, activated bool) error {
	return nil
}

func TestResolveOrCreateUser_ConflictRereads(t *testing.T) {
	winner := &model.User{ID: "winner-id", Email: "ada@example.com", Activated: true}
	repo := &conflictUserRepo{winner: winner}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	svc := NewAuthService(repo, tokens, logger)

	u, err := svc.ResolveOrCreateUser(context.Background(), "ada@example.com", "Ada", "")
	if err != nil {
		t.Fatalf("ResolveOrCreateUser: %v", err)
	}
	if u.ID != "winner-id" {
		t.Errorf("resolved to %s, want the winner's row", u.ID)
	}
	if repo.createErrs != 1 {
		t.Errorf("Create called %d times, want 1", repo.createErrs)
	}
	if repo.lookups != 2 {
		t.Errorf("GetByEmail called %d times, want 2 (miss, then re-read)", repo.lookups)
	}
}

func TestResolveOrCreateUser_EmptyEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auths.ResolveOrCreateUser(context.Background(), "", "Nobody", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("ResolveOrCreateUser(empty email) = %v, want ErrValidation", err)
	}
}

func TestLoginGoogle_IssuesToken(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.auths.LoginGoogle(context.Background(), &auth.GoogleUser{
		Email: "ada@example.com", Name: "Ada",
	})
	if err != nil {
		t.Fatalf("LoginGoogle: %v", err)
	}

	if result.Token == "" {
		t.Error("LoginGoogle should issue a token")
	}
	if result.User == nil || result.User.Email != "ada@example.com" {
		t.Errorf("LoginGoogle user = %+v", result.User)
	}
}

func TestGetUserByID_EmptyID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auths.GetUserByID(context.Background(), "")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID(\"\") = %v, want ErrNotFound", err)
	}
}
