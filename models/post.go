package models

import (
	"errors"
	"strconv"
)

// ErrNoPosts is returned when a response carries no post list at all.
var ErrNoPosts = errors.New("no posts in response")

// Rendered holds server-rendered HTML for a post field, as in
// {"rendered": "<p>...</p>"}.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Post is a content record returned by the posts endpoint (embed context).
type Post struct {
	ID      int      `json:"id"`
	Type    string   `json:"type"`
	Title   Rendered `json:"title"`
	Excerpt Rendered `json:"excerpt"`

	Slug string `json:"slug,omitempty"`
	Link string `json:"link,omitempty"`
	Date string `json:"date,omitempty"`
}

// IDClass returns the per-post identifier class, "post-{id}".
func (p Post) IDClass() string {
	return "post-" + strconv.Itoa(p.ID)
}

// Classes returns the classes carried by the post container: the content
// type followed by the identifier class. An empty type is skipped.
func (p Post) Classes() []string {
	if p.Type == "" {
		return []string{p.IDClass()}
	}
	return []string{p.Type, p.IDClass()}
}
