package extract

import (
	"fmt"

	"github.com/maltedev/review-scraper/internal/dom"
)

// Cascade is an ordered list of candidate selectors for one field. The first
// selector that structurally matches wins, even when the match has no text.
type Cascade []string

// FirstMatch evaluates the cascade against n and returns the first matching
// node and the selector that produced it. Selectors after the winning one are
// never queried. A nil node with a nil error means nothing matched.
func FirstMatch(n dom.Node, c Cascade) (dom.Node, string, error) {
	for _, selector := range c {
		match, err := n.QuerySelector(selector)
		if err != nil {
			return nil, selector, fmt.Errorf("failed to query %q: %w", selector, err)
		}
		if match != nil {
			return match, selector, nil
		}
	}
	return nil, "", nil
}

// FirstMatchAll is FirstMatch for multi-node fields: it returns every node
// matched by the first selector that matches at least one.
func FirstMatchAll(n dom.Node, c Cascade) ([]dom.Node, string, error) {
	for _, selector := range c {
		matches, err := n.QuerySelectorAll(selector)
		if err != nil {
			return nil, selector, fmt.Errorf("failed to query %q: %w", selector, err)
		}
		if len(matches) > 0 {
			return matches, selector, nil
		}
	}
	return nil, "", nil
}
