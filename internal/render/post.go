package render

import (
	"fmt"

	"github.com/mohammad-safakhou/postfeed/internal/dom"
	"github.com/mohammad-safakhou/postfeed/internal/helpers"
	"github.com/mohammad-safakhou/postfeed/models"
)

// Builder renders posts into a fragment.
type Builder struct {
	// Sanitize passes titles and excerpts through the post HTML policy
	// before they are parsed. When false the rendered HTML is inserted as
	// delivered.
	Sanitize bool
}

// BuildPost appends one post to frag as
//
//	<article class="{type} post-{id}"><h2>{title}</h2><div class="excerpt">{excerpt}</div></article>
//
// using the builder's sanitization setting.
func (b Builder) BuildPost(frag *dom.Fragment, post models.Post) error {
	title, excerpt := post.Title.Rendered, post.Excerpt.Rendered
	if b.Sanitize {
		title = helpers.SanitizePostHTML(title)
		excerpt = helpers.SanitizePostHTML(excerpt)
	}

	article := dom.NewElement("article", post.Classes()...)
	heading := dom.NewElement("h2")
	if err := dom.SetInnerHTML(heading, title); err != nil {
		return fmt.Errorf("post %d title: %w", post.ID, err)
	}
	body := dom.NewElement("div", "excerpt")
	if err := dom.SetInnerHTML(body, excerpt); err != nil {
		return fmt.Errorf("post %d excerpt: %w", post.ID, err)
	}
	article.AppendChild(heading)
	article.AppendChild(body)
	frag.AppendChild(article)
	return nil
}

// Build appends every post in order and returns how many were appended.
func (b Builder) Build(frag *dom.Fragment, posts []models.Post) (int, error) {
	for i, post := range posts {
		if err := b.BuildPost(frag, post); err != nil {
			return i, err
		}
	}
	return len(posts), nil
}

// BuildPost renders post without sanitization.
func BuildPost(frag *dom.Fragment, post models.Post) error {
	return Builder{}.BuildPost(frag, post)
}
