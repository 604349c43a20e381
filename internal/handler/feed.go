package handler

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/catalog-server/internal/model"
	"github.com/sakif/catalog-server/internal/service"
)

// Atom 1.0 document structure, marshalled with encoding/xml.

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	XMLNS   string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	ID         string         `xml:"id"`
	Updated    string         `xml:"updated"`
	Published  string         `xml:"published"`
	Link       atomLink       `xml:"link"`
	Content    atomContent    `xml:"content"`
	Categories []atomCategory `xml:"category"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// FeedHandler serves the Atom feed of recently updated items.
type FeedHandler struct {
	catalog *service.CatalogService
	baseURL string
	logger  *slog.Logger
}

// NewFeedHandler creates a FeedHandler. baseURL is the externally visible
// origin used in entry links, without a trailing slash.
func NewFeedHandler(catalog *service.CatalogService, baseURL string, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		catalog: catalog,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// HandleRecentFeed returns the ten most recently updated items as Atom.
// Entry categories are the item's tag names, lowercased.
//
// HTTP: GET /catalog/recent.atom
func (h *FeedHandler) HandleRecentFeed(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.RecentItems(r.Context())
	if err != nil {
		h.logger.Error("building recent feed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	feed := atomFeed{
		XMLNS:   "http://www.w3.org/2005/Atom",
		Title:   "Recent Items",
		ID:      h.baseURL + "/catalog/recent.atom",
		Updated: atomTime(feedUpdated(items)),
		Links: []atomLink{
			{Href: h.baseURL + "/catalog/recent.atom", Rel: "self"},
			{Href: h.baseURL + "/catalog/"},
		},
	}

	for _, item := range items {
		entryURL := h.itemURL(item)

		entry := atomEntry{
			Title:     item.Name,
			ID:        entryURL,
			Updated:   atomTime(item.UpdatedOn),
			Published: atomTime(item.CreatedOn),
			Link:      atomLink{Href: entryURL},
			Content:   atomContent{Type: "text", Body: item.Description},
		}
		for _, tag := range item.Tags {
			entry.Categories = append(entry.Categories, atomCategory{
				Term: strings.ToLower(tag.Name),
			})
		}
		feed.Entries = append(feed.Entries, entry)
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(feed); err != nil {
		h.logger.Error("encoding atom feed", slog.String("error", err.Error()))
	}
}

func (h *FeedHandler) itemURL(item model.Item) string {
	slug := fmt.Sprintf("%s-%s", item.Name, item.ID)
	return h.baseURL + "/catalog/items/view/" + url.PathEscape(slug)
}

// feedUpdated is the newest update time in the feed, or now for an empty
// catalog.
func feedUpdated(items []model.Item) time.Time {
	if len(items) == 0 {
		return time.Now().UTC()
	}
	return items[0].UpdatedOn
}

func atomTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
