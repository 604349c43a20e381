package service

import (
	"context"
	"log/slog"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/authz"
	"github.com/sakif/catalog-server/internal/model"
	"github.com/sakif/catalog-server/internal/repository"
)

// AdminService covers user management. Its operations require the admin
// flag but not activation: an admin's powers do not depend on the
// activated bit, so one admin deactivating another's account can never
// lock everyone out of the admin surface.
type AdminService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(users repository.UserRepository, logger *slog.Logger) *AdminService {
	return &AdminService{users: users, logger: logger}
}

// ListUsers returns every user account, oldest first.
func (s *AdminService) ListUsers(ctx context.Context, principal *model.User) ([]model.User, error) {
	if err := authz.Admin(principal); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// SetUserActivation flips a user's activated flag. Admin accounts are not
// valid targets; asking to toggle one fails with ErrInvalidTarget and no
// state change. Returns the updated user record.
func (s *AdminService) SetUserActivation(ctx context.Context, principal *model.User, targetID string, activated bool) (*model.User, error) {
	if err := authz.Admin(principal); err != nil {
		return nil, err
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Admin {
		return nil, apperror.InvalidTarget("admin accounts cannot be deactivated")
	}

	if err := s.users.SetActivated(ctx, target.ID, activated); err != nil {
		return nil, err
	}
	target.Activated = activated

	s.logger.Info("user activation changed",
		"user_id", target.ID, "activated", activated, "admin_id", principal.ID)
	return target, nil
}
