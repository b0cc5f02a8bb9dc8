package retailer

import (
	"strings"
	"sync"

	"github.com/maltedev/review-scraper/internal/models"
)

const (
	idTitleRunes = 30
	idTextRunes  = 50
)

// ReviewID builds the identity used to drop repeated reviews: the start of
// the title and of the text, joined by a dash, whitespace runs replaced by
// dashes, lower cased.
func ReviewID(r models.Review) string {
	id := prefix(r.Title, idTitleRunes) + "-" + prefix(r.Text, idTextRunes)
	return strings.ToLower(whitespaceRuns.ReplaceAllString(id, "-"))
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}

// Dedup remembers review IDs across the pages of one batch.
type Dedup struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedup() *Dedup {
	return &Dedup{seen: make(map[string]struct{})}
}

// Add records id and reports whether it had not been seen before.
func (d *Dedup) Add(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return false
	}
	d.seen[id] = struct{}{}
	return true
}

func (d *Dedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
