package extract

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/pacing"
)

type recordingPauser struct {
	kinds []pacing.Kind
}

func (p *recordingPauser) Pause(ctx context.Context, kind pacing.Kind) error {
	p.kinds = append(p.kinds, kind)
	return ctx.Err()
}

type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) messages(level slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string
	for _, r := range h.records {
		if r.Level == level {
			out = append(out, r.Message)
		}
	}
	return out
}

func newCaptureLogger() (*slog.Logger, *captureHandler) {
	h := &captureHandler{}
	return slog.New(h), h
}

func parse(t *testing.T, html string) *dom.HTMLDocument {
	t.Helper()
	doc, err := dom.ParseHTML(html)
	require.NoError(t, err)
	return doc
}

// firstNode returns the first node matching selector in html.
func firstNode(t *testing.T, html, selector string) dom.Node {
	t.Helper()
	n, err := parse(t, html).QuerySelector(selector)
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

// scriptedDoc is a static document with scripted visibility and clicks.
type scriptedDoc struct {
	*dom.HTMLDocument

	visible  map[string]bool
	clickErr map[string]error
	// hideAfter hides a selector once it has been clicked this many times.
	hideAfter map[string]int

	clicks  []string
	scrolls []string
}

func newScriptedDoc(t *testing.T, html string) *scriptedDoc {
	return &scriptedDoc{
		HTMLDocument: parse(t, html),
		visible:      map[string]bool{},
		clickErr:     map[string]error{},
		hideAfter:    map[string]int{},
	}
}

func (d *scriptedDoc) clickCount(selector string) int {
	n := 0
	for _, c := range d.clicks {
		if c == selector {
			n++
		}
	}
	return n
}

func (d *scriptedDoc) Visible(selector string) (bool, error) {
	if limit, ok := d.hideAfter[selector]; ok && d.clickCount(selector) >= limit {
		return false, nil
	}
	return d.visible[selector], nil
}

func (d *scriptedDoc) ScrollIntoView(selector string) error {
	d.scrolls = append(d.scrolls, selector)
	return nil
}

func (d *scriptedDoc) Click(selector string) error {
	if err := d.clickErr[selector]; err != nil {
		return err
	}
	d.clicks = append(d.clicks, selector)
	return nil
}

var errBrokenNode = errors.New("node detached")

// countingDoc wraps every node returned from the root so reads can be
// attributed to the container they happened under.
type countingDoc struct {
	*dom.HTMLDocument

	mu     sync.Mutex
	reads  map[int]int
	broken map[int]bool
}

func newCountingDoc(t *testing.T, html string) *countingDoc {
	return &countingDoc{
		HTMLDocument: parse(t, html),
		reads:        map[int]int{},
		broken:       map[int]bool{},
	}
}

func (d *countingDoc) QuerySelectorAll(selector string) ([]dom.Node, error) {
	nodes, err := d.HTMLDocument.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}

	out := make([]dom.Node, len(nodes))
	for i, n := range nodes {
		out[i] = &countingNode{Node: n, id: i, doc: d}
	}
	return out, nil
}

func (d *countingDoc) touch(id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads[id]++
	if d.broken[id] {
		return errBrokenNode
	}
	return nil
}

type countingNode struct {
	dom.Node
	id  int
	doc *countingDoc
}

func (n *countingNode) QuerySelector(selector string) (dom.Node, error) {
	if err := n.doc.touch(n.id); err != nil {
		return nil, err
	}
	return n.Node.QuerySelector(selector)
}

func (n *countingNode) QuerySelectorAll(selector string) ([]dom.Node, error) {
	if err := n.doc.touch(n.id); err != nil {
		return nil, err
	}
	return n.Node.QuerySelectorAll(selector)
}

func (n *countingNode) Text() (string, error) {
	if err := n.doc.touch(n.id); err != nil {
		return "", err
	}
	return n.Node.Text()
}

func (n *countingNode) Attribute(name string) (string, bool, error) {
	if err := n.doc.touch(n.id); err != nil {
		return "", false, err
	}
	return n.Node.Attribute(name)
}
