package extract

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/pacing"
)

var reviewTabSelectors = []string{
	`a:has-text("Customer Reviews")`,
	`a:has-text("Reviews")`,
	`button:has-text("Reviews")`,
	`a:has-text("Ratings & Reviews")`,
	`#reviews-tab`,
	`.reviews-tab`,
	`[data-tab="reviews"]`,
	`[data-target="#reviews"]`,
	`[href="#reviews"]`,
	`[aria-controls="reviews"]`,
	`.review-link`,
	`.product-reviews-tab`,
	`.pr-snippet-read-reviews`,
	`.bv-rating-ratio`,
	`.ratings-reviews`,
}

// reviewsScrollFraction is where reviews usually sit when there is no tab.
const reviewsScrollFraction = 0.7

// OpenReviewsSection brings the reviews area into view. It clicks the first
// review tab or link present on the page; without one it scrolls most of the
// way down. It reports whether a tab was found.
func OpenReviewsSection(ctx context.Context, doc dom.Document, p pacing.Pauser, logger *slog.Logger) (bool, error) {
	for _, selector := range reviewTabSelectors {
		tab, err := doc.QuerySelector(selector)
		if err != nil {
			logger.Debug("review tab query failed", "selector", selector, "error", err)
			continue
		}
		if tab == nil {
			continue
		}

		if err := doc.ScrollIntoView(selector); err != nil {
			logger.Debug("could not scroll to review tab", "selector", selector, "error", err)
		}
		if err := p.Pause(ctx, pacing.Short); err != nil {
			return false, err
		}

		if err := doc.Click(selector); err != nil {
			logger.Debug("could not click review tab", "selector", selector, "error", err)
		}
		if err := p.Pause(ctx, pacing.Tab); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := doc.ScrollTo(reviewsScrollFraction); err != nil && !errors.Is(err, dom.ErrNotInteractive) {
		logger.Warn("could not scroll to reviews", "error", err)
	}
	return false, p.Pause(ctx, pacing.Settle)
}
