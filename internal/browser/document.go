package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/maltedev/review-scraper/internal/dom"
)

// PageDocument adapts a live playwright page to dom.Document.
type PageDocument struct {
	page playwright.Page
}

func NewPageDocument(page playwright.Page) *PageDocument {
	return &PageDocument{page: page}
}

func (d *PageDocument) QuerySelector(selector string) (dom.Node, error) {
	el, err := d.page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", dom.ErrInvalidSelector, selector, err)
	}
	if el == nil {
		return nil, nil
	}
	return &elementNode{el: el}, nil
}

func (d *PageDocument) QuerySelectorAll(selector string) ([]dom.Node, error) {
	els, err := d.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", dom.ErrInvalidSelector, selector, err)
	}
	return wrapElements(els), nil
}

func (d *PageDocument) Text() (string, error) {
	v, err := d.page.Evaluate(`() => document.body ? document.body.textContent : ""`)
	if err != nil {
		return "", fmt.Errorf("failed to read page text: %w", err)
	}
	s, _ := v.(string)
	return s, nil
}

// Attribute always reports absent; the document itself has no attributes.
func (d *PageDocument) Attribute(name string) (string, bool, error) {
	return "", false, nil
}

func (d *PageDocument) Visible(selector string) (bool, error) {
	loc := d.page.Locator(selector).First()

	count, err := loc.Count()
	if err != nil {
		return false, fmt.Errorf("failed to count %q: %w", selector, err)
	}
	if count == 0 {
		return false, nil
	}

	box, err := loc.BoundingBox()
	if err != nil {
		return false, fmt.Errorf("failed to measure %q: %w", selector, err)
	}
	if box == nil {
		return false, nil
	}

	vp := d.page.ViewportSize()
	if vp == nil {
		return false, nil
	}

	return box.X >= 0 && box.Y >= 0 &&
		box.X+box.Width <= float64(vp.Width) &&
		box.Y+box.Height <= float64(vp.Height), nil
}

func (d *PageDocument) ScrollIntoView(selector string) error {
	if err := d.page.Locator(selector).First().ScrollIntoViewIfNeeded(); err != nil {
		return fmt.Errorf("failed to scroll to %q: %w", selector, err)
	}
	return nil
}

func (d *PageDocument) Click(selector string) error {
	if err := d.page.Locator(selector).First().Click(); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

const scrollThroughScript = `async (limit) => {
	await new Promise((resolve) => {
		let total = 0;
		const step = 100;
		const timer = setInterval(() => {
			window.scrollBy(0, step);
			total += step;
			if (total >= document.body.scrollHeight || total >= limit) {
				clearInterval(timer);
				resolve();
			}
		}, 100);
	});
}`

func (d *PageDocument) ScrollThrough(limit int) error {
	if _, err := d.page.Evaluate(scrollThroughScript, limit); err != nil {
		return fmt.Errorf("failed to scroll page: %w", err)
	}
	return nil
}

func (d *PageDocument) ScrollTo(fraction float64) error {
	if _, err := d.page.Evaluate(`(f) => window.scrollTo(0, document.body.scrollHeight * f)`, fraction); err != nil {
		return fmt.Errorf("failed to scroll page: %w", err)
	}
	return nil
}

type elementNode struct {
	el playwright.ElementHandle
}

func wrapElements(els []playwright.ElementHandle) []dom.Node {
	nodes := make([]dom.Node, 0, len(els))
	for _, el := range els {
		nodes = append(nodes, &elementNode{el: el})
	}
	return nodes
}

func (n *elementNode) QuerySelector(selector string) (dom.Node, error) {
	el, err := n.el.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	if el == nil {
		return nil, nil
	}
	return &elementNode{el: el}, nil
}

func (n *elementNode) QuerySelectorAll(selector string) ([]dom.Node, error) {
	els, err := n.el.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	return wrapElements(els), nil
}

func (n *elementNode) Text() (string, error) {
	return n.el.TextContent()
}

// Attribute distinguishes a missing attribute from an empty one, which
// GetAttribute cannot.
func (n *elementNode) Attribute(name string) (string, bool, error) {
	v, err := n.el.Evaluate(`(el, name) => el.getAttribute(name)`, name)
	if err != nil {
		return "", false, fmt.Errorf("failed to read attribute %s: %w", name, err)
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (n *elementNode) Click() error {
	return n.el.Click()
}
