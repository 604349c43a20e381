package model

// Tag is a named category that items can be filed under.
//
// Names are unique across the whole store (UNIQUE constraint on tags.name);
// a create or rename that collides is rolled back and surfaced as a
// DuplicateName validation error, never a partial write.
type Tag struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"userId"` // owning user
}
