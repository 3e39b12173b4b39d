package render

import (
	"fmt"
	"io"
	"mime"

	xhtml "golang.org/x/net/html"

	"github.com/fragmede/navmark/internal/decorate"
)

// Document is a parsed HTML page with its elements indexed by id.
type Document struct {
	root *xhtml.Node
	byID map[string]*xhtml.Node
}

// Parse reads a complete HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := xhtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	d := &Document{root: root, byID: make(map[string]*xhtml.Node)}
	d.index(root)
	return d, nil
}

// index walks the tree in document order. The first element carrying an id
// keeps it, the way getElementById resolves duplicates.
func (d *Document) index(n *xhtml.Node) {
	if n.Type == xhtml.ElementNode {
		if id, ok := attr(n, "id"); ok && id != "" {
			if _, seen := d.byID[id]; !seen {
				d.byID[id] = n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.index(c)
	}
}

// ElementByID implements decorate.Document.
func (d *Document) ElementByID(id string) (decorate.Element, bool) {
	n, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return element{n}, true
}

// Render writes the page back out as HTML.
func (d *Document) Render(w io.Writer) error {
	return xhtml.Render(w, d.root)
}

// Decorate parses the page read from r, applies rules for pathname and
// writes the result to w.
func Decorate(r io.Reader, w io.Writer, pathname string, rules decorate.Rules) (decorate.Result, error) {
	doc, err := Parse(r)
	if err != nil {
		return decorate.Result{}, err
	}
	res := rules.Apply(pathname, doc)
	if err := doc.Render(w); err != nil {
		return res, fmt.Errorf("rendering html: %w", err)
	}
	return res, nil
}

// IsHTML reports whether a Content-Type header value names an HTML page.
func IsHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/html"
}

type element struct {
	n *xhtml.Node
}

func (e element) AddClass(token string) {
	v, _ := attr(e.n, "class")
	setAttr(e.n, "class", decorate.ParseClassSet(v).Add(token).String())
}

func (e element) RemoveClass(token string) {
	v, ok := attr(e.n, "class")
	if !ok {
		return
	}
	setAttr(e.n, "class", decorate.ParseClassSet(v).Remove(token).String())
}

func attr(n *xhtml.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *xhtml.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, xhtml.Attribute{Key: key, Val: val})
}
