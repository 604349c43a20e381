package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/authz"
	"github.com/sakif/catalog-server/internal/model"
	"github.com/sakif/catalog-server/internal/repository"
)

// RecentFeedSize is how many items the recent feed exposes.
const RecentFeedSize = 10

// TagInput is the payload for creating or renaming a tag.
type TagInput struct {
	Name string `json:"name" validate:"required,min=3,max=25"`
}

// ItemInput is the payload for creating or editing an item. Edits replace
// the whole mutable surface: name, description, picture and the tag set.
type ItemInput struct {
	Name        string   `json:"name" validate:"required,min=3,max=25"`
	Description string   `json:"description" validate:"max=200"`
	PictureURL  string   `json:"picture_url" validate:"omitempty,url"`
	TagIDs      []string `json:"tag_ids"`
}

// Catalog is the full browsable state: every tag and every item.
type Catalog struct {
	Tags  []model.Tag  `json:"tags"`
	Items []model.Item `json:"items"`
}

// CatalogService owns the tag/item lifecycle. Every mutation runs the same
// gate sequence: authenticated, activated, then owner-or-admin against the
// resolved target. Reads are public.
type CatalogService struct {
	tags     repository.TagRepository
	items    repository.ItemRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCatalogService creates a CatalogService with all required dependencies.
func NewCatalogService(
	tags repository.TagRepository,
	items repository.ItemRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		tags:     tags,
		items:    items,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// checkInput runs struct validation and converts the first failure into a
// field-level validation error the handler can show next to the form field.
func (s *CatalogService) checkInput(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.ValidationFailed("", "invalid input")
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperror.ValidationFailed(field, field+" is required")
	case "min":
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "url":
		return apperror.ValidationFailed(field, field+" must be a valid URL")
	default:
		return apperror.ValidationFailed(field, field+" is invalid")
	}
}

// ListCatalog returns every tag and every item.
func (s *CatalogService) ListCatalog(ctx context.Context) (*Catalog, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return &Catalog{Tags: tags, Items: items}, nil
}

// GetTagByName returns the single tag with the given name, together with
// the items carrying it.
func (s *CatalogService) GetTagByName(ctx context.Context, name string) (*model.Tag, []model.Item, error) {
	tag, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.items.ListByTag(ctx, tag.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing items for tag: %w", err)
	}
	return tag, items, nil
}

// GetItemByNameAndID returns the item addressed by the original's
// name-plus-id route scheme. Both parts must match.
func (s *CatalogService) GetItemByNameAndID(ctx context.Context, name, id string) (*model.Item, error) {
	return s.items.GetByNameAndID(ctx, name, id)
}

// RecentItems returns the most recently updated items, newest first.
func (s *CatalogService) RecentItems(ctx context.Context) ([]model.Item, error) {
	return s.items.ListRecent(ctx, RecentFeedSize)
}

// CreateTag creates a tag owned by the principal. A name collision with any
// existing tag is reported as a duplicate-name error on the name field; the
// store is left unchanged.
func (s *CatalogService) CreateTag(ctx context.Context, principal *model.User, input TagInput) (*model.Tag, error) {
	if err := authz.Mutate(principal); err != nil {
		return nil, err
	}
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	tag := &model.Tag{
		Name:   input.Name,
		UserID: principal.ID,
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "name", tag.Name, "user_id", principal.ID)
	return tag, nil
}

// RenameTag renames the tag currently called name. Ownership of the tag is
// unchanged; only the name mutates.
func (s *CatalogService) RenameTag(ctx context.Context, principal *model.User, name string, input TagInput) (*model.Tag, error) {
	if err := authz.Mutate(principal); err != nil {
		return nil, err
	}

	tag, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := authz.Owned(principal, "tag", tag.UserID); err != nil {
		return nil, err
	}
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	if err := s.tags.Rename(ctx, tag.ID, input.Name); err != nil {
		return nil, err
	}
	tag.Name = input.Name

	s.logger.Info("tag renamed", "tag_id", tag.ID, "name", tag.Name, "user_id", principal.ID)
	return tag, nil
}

// DeleteTag deletes the tag with the given name and removes its item
// associations. The items themselves survive.
func (s *CatalogService) DeleteTag(ctx context.Context, principal *model.User, name string) error {
	if err := authz.Mutate(principal); err != nil {
		return err
	}

	tag, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if err := authz.Owned(principal, "tag", tag.UserID); err != nil {
		return err
	}

	if err := s.tags.Delete(ctx, tag.ID); err != nil {
		return err
	}

	s.logger.Info("tag deleted", "tag_id", tag.ID, "name", tag.Name, "user_id", principal.ID)
	return nil
}

// CreateItem creates an item owned by the principal. Tag ids that do not
// resolve to existing tags are dropped without error.
func (s *CatalogService) CreateItem(ctx context.Context, principal *model.User, input ItemInput) (*model.Item, error) {
	if err := authz.Mutate(principal); err != nil {
		return nil, err
	}
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	item := &model.Item{
		Name:        input.Name,
		Description: input.Description,
		PictureURL:  input.PictureURL,
		UserID:      principal.ID,
	}
	if err := s.items.Create(ctx, item, input.TagIDs); err != nil {
		return nil, err
	}

	s.logger.Info("item created", "item_id", item.ID, "name", item.Name, "user_id", principal.ID)
	return item, nil
}

// UpdateItem replaces the item's name, description, picture and tag set in
// one transaction. updated_on is refreshed; created_on never changes.
func (s *CatalogService) UpdateItem(ctx context.Context, principal *model.User, id string, input ItemInput) (*model.Item, error) {
	if err := authz.Mutate(principal); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Owned(principal, "item", item.UserID); err != nil {
		return nil, err
	}
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	item.Name = input.Name
	item.Description = input.Description
	item.PictureURL = input.PictureURL

	if err := s.items.Update(ctx, item, input.TagIDs); err != nil {
		return nil, err
	}

	s.logger.Info("item updated", "item_id", item.ID, "name", item.Name, "user_id", principal.ID)
	return item, nil
}

// DeleteItem deletes the item and its tag associations.
func (s *CatalogService) DeleteItem(ctx context.Context, principal *model.User, id string) error {
	if err := authz.Mutate(principal); err != nil {
		return err
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Owned(principal, "item", item.UserID); err != nil {
		return err
	}

	if err := s.items.Delete(ctx, item.ID); err != nil {
		return err
	}

	s.logger.Info("item deleted", "item_id", item.ID, "name", item.Name, "user_id", principal.ID)
	return nil
}
