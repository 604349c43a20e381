// Package handler contains the HTTP layer: it parses requests, calls the
// service layer, and writes responses. Business rules live below it.
package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/model"
	"github.com/sakif/catalog-server/internal/service"
)

// PageHandler renders the HTML catalog pages. Each page has its own
// template set parsed against the shared base layout, so pages can define
// the same "content" block without clobbering each other.
type PageHandler struct {
	catalog  *service.CatalogService
	auths    *service.AuthService
	index    *template.Template
	tagPage  *template.Template
	itemPage *template.Template
	logger   *slog.Logger
}

// NewPageHandler creates a PageHandler and parses the templates.
func NewPageHandler(
	templateDir string,
	catalog *service.CatalogService,
	auths *service.AuthService,
	logger *slog.Logger,
) (*PageHandler, error) {
	parse := func(page string) (*template.Template, error) {
		return template.ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page),
		)
	}

	index, err := parse("catalog.html")
	if err != nil {
		return nil, err
	}
	tagPage, err := parse("viewtag.html")
	if err != nil {
		return nil, err
	}
	itemPage, err := parse("viewitem.html")
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		catalog:  catalog,
		auths:    auths,
		index:    index,
		tagPage:  tagPage,
		itemPage: itemPage,
		logger:   logger,
	}, nil
}

// pageData is the template payload shared by all pages. User is nil for
// anonymous visitors; templates use it to decide whether to render the
// edit controls.
type pageData struct {
	Title string
	User  *model.User
	Tags  []model.Tag
	Items []model.Item
	Tag   *model.Tag
	Item  *model.Item
}

func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *PageHandler) renderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleIndex serves the catalog front page: all tags and all items.
//
// HTTP: GET / and GET /catalog/
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	user, err := requestPrincipal(r, h.auths)
	if err != nil {
		h.renderError(w, err)
		return
	}

	cat, err := h.catalog.ListCatalog(r.Context())
	if err != nil {
		h.logger.Error("listing catalog for index page", slog.String("error", err.Error()))
		h.renderError(w, err)
		return
	}

	h.render(w, h.index, pageData{
		Title: "Catalog",
		User:  user,
		Tags:  cat.Tags,
		Items: cat.Items,
	})
}

// HandleTagPage serves one tag with the items carrying it.
//
// HTTP: GET /catalog/tags/view/{name}
func (h *PageHandler) HandleTagPage(w http.ResponseWriter, r *http.Request) {
	user, err := requestPrincipal(r, h.auths)
	if err != nil {
		h.renderError(w, err)
		return
	}

	name := chi.URLParam(r, "name")
	tag, items, err := h.catalog.GetTagByName(r.Context(), name)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, h.tagPage, pageData{
		Title: tag.Name,
		User:  user,
		Tag:   tag,
		Items: items,
	})
}

// HandleItemPage serves one item addressed by its name-id slug.
//
// HTTP: GET /catalog/items/view/{slug}
func (h *PageHandler) HandleItemPage(w http.ResponseWriter, r *http.Request) {
	user, err := requestPrincipal(r, h.auths)
	if err != nil {
		h.renderError(w, err)
		return
	}

	name, id, err := splitItemSlug(chi.URLParam(r, "slug"))
	if err != nil {
		h.renderError(w, err)
		return
	}

	item, err := h.catalog.GetItemByNameAndID(r.Context(), name, id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, h.itemPage, pageData{
		Title: item.Name,
		User:  user,
		Item:  item,
	})
}
