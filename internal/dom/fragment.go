package dom

import (
	"golang.org/x/net/html"
)

// Fragment is an off-document accumulation buffer. It is owned by a single
// invocation and is not safe for concurrent use.
type Fragment struct {
	root *html.Node
}

// NewFragment returns an empty fragment.
func NewFragment() *Fragment {
	return &Fragment{root: &html.Node{Type: html.DocumentNode}}
}

// AppendChild adds node as the last child of the fragment and returns it.
// A node that already has a parent is moved.
func (f *Fragment) AppendChild(node *html.Node) *html.Node {
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
	f.root.AppendChild(node)
	return node
}

// Len returns the number of top-level nodes held by the fragment.
func (f *Fragment) Len() int {
	n := 0
	for c := f.root.FirstChild; c != nil; c = c.NextSibling {
		n++
	}
	return n
}

// Nodes returns the top-level nodes without detaching them.
func (f *Fragment) Nodes() []*html.Node {
	var out []*html.Node
	for c := f.root.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// detach removes and returns every top-level node, leaving f empty.
func (f *Fragment) detach() []*html.Node {
	nodes := f.Nodes()
	for _, n := range nodes {
		f.root.RemoveChild(n)
	}
	return nodes
}
