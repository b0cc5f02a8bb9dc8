package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// HTMLDocument is a static snapshot of a page. It has no layout, so nothing
// is ever visible and every interaction fails with ErrNotInteractive.
type HTMLDocument struct {
	htmlNode
}

func NewHTMLDocument(r io.Reader) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &HTMLDocument{htmlNode{sel: doc.Selection}}, nil
}

func ParseHTML(html string) (*HTMLDocument, error) {
	return NewHTMLDocument(strings.NewReader(html))
}

func (d *HTMLDocument) Visible(selector string) (bool, error) {
	return false, nil
}

func (d *HTMLDocument) ScrollIntoView(selector string) error {
	return ErrNotInteractive
}

func (d *HTMLDocument) Click(selector string) error {
	return ErrNotInteractive
}

func (d *HTMLDocument) ScrollThrough(limit int) error {
	return ErrNotInteractive
}

func (d *HTMLDocument) ScrollTo(fraction float64) error {
	return ErrNotInteractive
}

type htmlNode struct {
	sel *goquery.Selection
}

func (n htmlNode) find(selector string) (*goquery.Selection, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, selector, err)
	}
	return n.sel.FindMatcher(m), nil
}

func (n htmlNode) QuerySelector(selector string) (Node, error) {
	found, err := n.find(selector)
	if err != nil {
		return nil, err
	}
	if found.Length() == 0 {
		return nil, nil
	}
	return htmlNode{sel: found.First()}, nil
}

func (n htmlNode) QuerySelectorAll(selector string) ([]Node, error) {
	found, err := n.find(selector)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, htmlNode{sel: s})
	})
	return nodes, nil
}

func (n htmlNode) Text() (string, error) {
	return n.sel.Text(), nil
}

func (n htmlNode) Attribute(name string) (string, bool, error) {
	v, ok := n.sel.Attr(name)
	return v, ok, nil
}
