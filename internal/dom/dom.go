// Package dom describes the rendered document the extractors read from.
//
// A Document is either a live browser page or a parsed HTML snapshot. All
// reads are fallible; a query that matches nothing is not an error and
// returns a nil Node.
package dom

import "errors"

var (
	ErrNotInteractive  = errors.New("document does not support interaction")
	ErrInvalidSelector = errors.New("invalid selector")
)

// Node is an element that can be queried relative to itself.
type Node interface {
	// QuerySelector returns the first descendant matching selector, or nil.
	QuerySelector(selector string) (Node, error)
	// QuerySelectorAll returns every descendant matching selector in document order.
	QuerySelectorAll(selector string) ([]Node, error)
	// Text returns the untrimmed text content of the node.
	Text() (string, error)
	// Attribute returns the attribute value and whether it is present.
	Attribute(name string) (string, bool, error)
}

// Clicker is implemented by nodes that can be clicked directly.
type Clicker interface {
	Click() error
}

// Document is the page handle. Its Node methods query from the document root.
type Document interface {
	Node

	// Visible reports whether the first match of selector exists and lies
	// completely inside the current viewport.
	Visible(selector string) (bool, error)
	ScrollIntoView(selector string) error
	Click(selector string) error
	// ScrollThrough scrolls down step by step until the bottom of the page
	// or limit pixels, whichever comes first.
	ScrollThrough(limit int) error
	// ScrollTo scrolls to the given fraction of the page height.
	ScrollTo(fraction float64) error
}
