package extract

import (
	"context"
	"log/slog"

	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/pacing"
)

// DefaultMaxRounds bounds the "load more" loop.
const DefaultMaxRounds = 5

var DefaultLoadMoreSelectors = []string{
	`button:has-text("Load More")`,
	`button:has-text("See More")`,
	`button:has-text("Show More")`,
	`a:has-text("Load More")`,
	`a:has-text("See More")`,
	`[data-hook="load-more-button"]`,
	`.load-more-button`,
	`.show-more-reviews`,
	`.reviews-load-more`,
	`.bv-content-btn-pages-load-more`,
	`.see-more-reviews`,
	`#reviews-load-more`,
}

// Expansion summarises what the expander did to the page.
type Expansion struct {
	Rounds int `json:"rounds"`
	Clicks int `json:"clicks"`
}

// Expanded reports whether at least one "load more" click succeeded.
func (e Expansion) Expanded() bool {
	return e.Clicks > 0
}

// Expander reveals reviews hidden behind "load more" controls.
type Expander struct {
	selectors []string
	maxRounds int
	pauser    pacing.Pauser
	logger    *slog.Logger
}

func NewExpander(p pacing.Pauser, logger *slog.Logger) *Expander {
	return &Expander{
		selectors: DefaultLoadMoreSelectors,
		maxRounds: DefaultMaxRounds,
		pauser:    p,
		logger:    logger.With("component", "expander"),
	}
}

// WithSelectors returns a copy of the expander using selectors.
func (e *Expander) WithSelectors(selectors []string) *Expander {
	c := *e
	c.selectors = selectors
	return &c
}

// Expand runs up to maxRounds rounds. Each round clicks the first control that
// is present and fully inside the viewport; a round that clicks nothing ends
// the loop. Only a cancelled context is returned as an error.
func (e *Expander) Expand(ctx context.Context, doc dom.Document) (Expansion, error) {
	var exp Expansion

	for exp.Rounds < e.maxRounds {
		exp.Rounds++

		clicked, err := e.round(ctx, doc)
		if err != nil {
			return exp, err
		}
		if !clicked {
			break
		}
		exp.Clicks++
	}

	e.logger.Debug("expansion finished", "rounds", exp.Rounds, "clicks", exp.Clicks)
	return exp, nil
}

func (e *Expander) round(ctx context.Context, doc dom.Document) (bool, error) {
	for _, selector := range e.selectors {
		visible, err := doc.Visible(selector)
		if err != nil {
			e.logger.Debug("visibility check failed", "selector", selector, "error", err)
			continue
		}
		if !visible {
			continue
		}

		if err := doc.ScrollIntoView(selector); err != nil {
			e.logger.Warn("could not scroll to load more control", "selector", selector, "error", err)
		}
		if err := e.pauser.Pause(ctx, pacing.Settle); err != nil {
			return false, err
		}

		if err := doc.Click(selector); err != nil {
			e.logger.Warn("could not click load more control", "selector", selector, "error", err)
			continue
		}

		if err := e.pauser.Pause(ctx, pacing.Load); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
