package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/model"
	"github.com/sakif/catalog-server/internal/service"
)

// CatalogHandler serves the public catalog JSON API and the authenticated
// mutation endpoints for tags and items.
type CatalogHandler struct {
	catalog *service.CatalogService
	auths   *service.AuthService
	logger  *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(
	catalog *service.CatalogService,
	auths *service.AuthService,
	logger *slog.Logger,
) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, auths: auths, logger: logger}
}

func (h *CatalogHandler) principal(r *http.Request) (*model.User, error) {
	return requestPrincipal(r, h.auths)
}

// tagView is the wire shape for a tag together with its items, matching
// the catalog's original JSON serialization.
type tagView struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	UserID string       `json:"userId"`
	Items  []model.Item `json:"items"`
}

// HandleCatalog returns every tag and every item.
//
// HTTP: GET /catalog.json
func (h *CatalogHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalog.ListCatalog(r.Context())
	if err != nil {
		h.logger.Error("listing catalog", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// HandleListTags returns all tags.
//
// HTTP: GET /catalog/tags.json
func (h *CatalogHandler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalog.ListCatalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": cat.Tags})
}

// HandleListItems returns all items with their tag sets.
//
// HTTP: GET /catalog/items.json
func (h *CatalogHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalog.ListCatalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": cat.Items})
}

// HandleTagJSON returns one tag by name, with the items carrying it.
//
// HTTP: GET /catalog/tags/view/{name}.json
func (h *CatalogHandler) HandleTagJSON(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	tag, items, err := h.catalog.GetTagByName(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}

	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, tagView{
		ID:     tag.ID,
		Name:   tag.Name,
		UserID: tag.UserID,
		Items:  items,
	})
}

// HandleItemJSON returns one item addressed by its name-id slug.
//
// HTTP: GET /catalog/items/view/{slug}.json
func (h *CatalogHandler) HandleItemJSON(w http.ResponseWriter, r *http.Request) {
	name, id, err := splitItemSlug(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.catalog.GetItemByNameAndID(r.Context(), name, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// splitItemSlug splits a {name}-{id} slug at its last dash. Item names may
// contain dashes; ids (xid strings) never do, so the last dash is always
// the separator.
func splitItemSlug(slug string) (name, id string, err error) {
	i := strings.LastIndex(slug, "-")
	if i <= 0 || i == len(slug)-1 {
		return "", "", apperror.NotFound("item", slug)
	}
	return slug[:i], slug[i+1:], nil
}

// HandleCreateTag creates a tag owned by the caller.
//
// HTTP: POST /api/tags
func (h *CatalogHandler) HandleCreateTag(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input service.TagInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	tag, err := h.catalog.CreateTag(r.Context(), principal, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// HandleRenameTag renames the tag currently called {name}.
//
// HTTP: PUT /api/tags/{name}
func (h *CatalogHandler) HandleRenameTag(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input service.TagInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	tag, err := h.catalog.RenameTag(r.Context(), principal, chi.URLParam(r, "name"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// HandleDeleteTag deletes the tag called {name} and its associations.
//
// HTTP: DELETE /api/tags/{name}
func (h *CatalogHandler) HandleDeleteTag(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.catalog.DeleteTag(r.Context(), principal, chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "tag deleted"})
}

// HandleCreateItem creates an item owned by the caller.
//
// HTTP: POST /api/items
func (h *CatalogHandler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input service.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	item, err := h.catalog.CreateItem(r.Context(), principal, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HandleUpdateItem replaces the item's fields and tag set.
//
// HTTP: PUT /api/items/{id}
func (h *CatalogHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input service.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	item, err := h.catalog.UpdateItem(r.Context(), principal, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HandleDeleteItem deletes the item and its associations.
//
// HTTP: DELETE /api/items/{id}
func (h *CatalogHandler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	principal, err := h.principal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.catalog.DeleteItem(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
