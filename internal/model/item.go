package model

import "time"

// Item is a catalog entry, owned by a user and tagged with zero or more tags.
//
// CreatedOn is set once at creation; UpdatedOn is refreshed on every edit.
// The Atom feed orders by UpdatedOn. Tags holds the resolved tag set;
// order-irrelevant, only tags that existed at write time.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PictureURL  string    `json:"pictureUrl,omitempty"` // optional, well-formed URL if present
	UserID      string    `json:"userId"`
	Tags        []Tag     `json:"tags,omitempty"`
	CreatedOn   time.Time `json:"createdOn"`
	UpdatedOn   time.Time `json:"updatedOn"`
}
