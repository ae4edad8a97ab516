// Package dom is a small server-side document model built on x/net/html.
// A Document is the page the pipelines render into; a Fragment is the
// off-document buffer used to batch element insertions into one append.
package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	shiori "github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrElementNotFound is returned when an id does not resolve to an element.
var ErrElementNotFound = errors.New("element not found")

// Document is a parsed HTML page. All methods are safe for concurrent use;
// mutations are serialized the way a browser event loop would serialize them.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses markup into a Document.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

func (d *Document) byID(id string) (*html.Node, error) {
	node := shiori.QuerySelector(d.root, "#"+id)
	if node == nil {
		return nil, fmt.Errorf("#%s: %w", id, ErrElementNotFound)
	}
	return node, nil
}

// Has reports whether an element with the given id exists.
func (d *Document) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, err := d.byID(id)
	return err == nil
}

// AppendFragment moves every node of frag to the end of the element with
// the given id. frag is empty afterwards. It returns the number of nodes
// moved.
func (d *Document) AppendFragment(id string, frag *Fragment) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	parent, err := d.byID(id)
	if err != nil {
		return 0, err
	}
	nodes := frag.detach()
	for _, n := range nodes {
		shiori.AppendChild(parent, n)
	}
	return len(nodes), nil
}

// SetText replaces the content of the element with a single text node.
func (d *Document) SetText(id, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	node, err := d.byID(id)
	if err != nil {
		return err
	}
	shiori.SetTextContent(node, text)
	return nil
}

// Text returns the text content of the element.
func (d *Document) Text(id string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	node, err := d.byID(id)
	if err != nil {
		return "", err
	}
	return shiori.TextContent(node), nil
}

// InnerHTML returns the serialized children of the element.
func (d *Document) InnerHTML(id string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	node, err := d.byID(id)
	if err != nil {
		return "", err
	}
	return shiori.InnerHTML(node), nil
}

// Clear removes every child of the element.
func (d *Document) Clear(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	node, err := d.byID(id)
	if err != nil {
		return err
	}
	for c := node.FirstChild; c != nil; c = node.FirstChild {
		node.RemoveChild(c)
	}
	return nil
}

// Count returns the number of elements matching a CSS selector inside the
// element with the given id.
func (d *Document) Count(id, selector string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	node, err := d.byID(id)
	if err != nil {
		return 0, err
	}
	return len(shiori.QuerySelectorAll(node, selector)), nil
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.root)
}

// NewElement creates a detached element carrying the given classes.
func NewElement(tag string, classes ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if len(classes) > 0 {
		shiori.SetAttribute(n, "class", strings.Join(classes, " "))
	}
	return n
}

// SetInnerHTML replaces the children of node with markup parsed in the
// context of node's tag. Malformed markup yields whatever the HTML parser
// recovers.
func SetInnerHTML(node *html.Node, markup string) error {
	context := NewElement(node.Data)
	children, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return fmt.Errorf("parse markup for <%s>: %w", node.Data, err)
	}
	for c := node.FirstChild; c != nil; c = node.FirstChild {
		node.RemoveChild(c)
	}
	for _, c := range children {
		node.AppendChild(c)
	}
	return nil
}

// InnerHTML returns the serialized children of a detached node.
func InnerHTML(node *html.Node) string {
	return shiori.InnerHTML(node)
}

// OuterHTML returns the serialized node.
func OuterHTML(node *html.Node) string {
	return shiori.OuterHTML(node)
}

// ClassName returns the class attribute of node.
func ClassName(node *html.Node) string {
	return shiori.ClassName(node)
}
