// Package service contains the business logic layer: validation, the
// authorization pipeline entry points, and orchestration between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/auth"
	"github.com/sakif/catalog-server/internal/model"
	"github.com/sakif/catalog-server/internal/repository"
)

// AuthService binds Google identities to local user records and issues
// session tokens.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginGoogle completes a Google OAuth callback: it resolves the Google
// profile to a local user (creating one on first login) and issues a
// session token for it.
func (s *AuthService) LoginGoogle(ctx context.Context, gu *auth.GoogleUser) (*AuthResult, error) {
	user, err := s.ResolveOrCreateUser(ctx, gu.Email, gu.Name, gu.Picture)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "email", user.Email)

	return &AuthResult{User: user, Token: token}, nil
}

// ResolveOrCreateUser maps an email to exactly one local user. The lookup
// is exact-match; on first login a record is created with activated=true
// and admin=false. The operation is idempotent under concurrent duplicate
// logins: if two requests race past the lookup, the UNIQUE(email)
// constraint rejects the second insert and we re-read the winner's row.
// Name and picture are captured at creation only; later logins never
// overwrite the stored profile.
func (s *AuthService) ResolveOrCreateUser(ctx context.Context, email, name, picture string) (*model.User, error) {
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email must not be empty")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("looking up user by email: %w", err)
	}

	created := &model.User{
		Name:      name,
		Email:     email,
		Picture:   picture,
		Activated: true,
		Admin:     false,
	}

	err = s.users.Create(ctx, created)
	if err == nil {
		s.logger.Info("user created", "user_id", created.ID, "email", created.Email)
		return created, nil
	}
	if !errors.Is(err, apperror.ErrConflict) {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	// Lost the race: a concurrent login inserted the same email first.
	// The winner's row is the canonical record.
	user, err = s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("re-reading user after conflict: %w", err)
	}
	return user, nil
}

// GetUserByID loads a user record, typically to turn the session's subject
// claim into a principal.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.NotFound("user", id)
	}
	return s.users.GetByID(ctx, id)
}
