package extract

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/pacing"
)

const (
	NameAmazon  = "amazon"
	NameWalmart = "walmart"
	NameBestBuy = "bestbuy"
	NameGeneric = "generic"
)

// Amazon selectors.
const (
	amazonReview   = `[data-hook="review"]`
	amazonRating   = `[data-hook="review-star-rating"]`
	amazonTitle    = `[data-hook="review-title"]`
	amazonDate     = `[data-hook="review-date"]`
	amazonBody     = `[data-hook="review-body"]`
	amazonVerified = `[data-hook="avp-badge"]`
	amazonReadMore = `[data-hook="expand-collapse-read-more"]`
)

// Walmart selectors.
const (
	walmartReview   = `.review-card`
	walmartRating   = `.stars-container`
	walmartTitle    = `.review-title`
	walmartDate     = `.review-date`
	walmartBody     = `.review-text`
	walmartVerified = `.verified-purchaser-badge`
	walmartTab      = `button:has-text("Customer Reviews")`
)

// Best Buy selectors. Groups match in document order.
const (
	bestBuyReview   = `.review-item,.user-review`
	bestBuyRating   = `.c-review-rating`
	bestBuyTitle    = `.c-review-title,.review-title`
	bestBuyDate     = `.submission-date,.review-date`
	bestBuyBody     = `.c-review-content,.review-content`
	bestBuyVerified = `.verified-purchaser`
	bestBuyTab      = `.reviews-tab,.v-tab:has-text("Reviews")`
)

var genericContainers = Cascade{
	`.review`,
	`.review-item`,
	`[data-hook="review"]`,
	`.product-review`,
	`.user-review`,
	`.feedback`,
	`.comment`,
	`div[class*="review"]`,
	`div[id*="review"]`,
	`li[class*="review"]`,
	`.ratings-reviews-item`,
}

var genericRating = Cascade{
	`.rating`,
	`.stars`,
	`[itemprop="ratingValue"]`,
	`.score`,
	`.review-rating`,
	`.star-rating`,
	`span[class*="star"]`,
	`div[class*="star"]`,
}

const genericStars = `.fa-star, .filled-stars, .Icon--star-fill`

var genericTitle = Cascade{
	`.review-title`,
	`[itemprop="name"]`,
	`.title`,
	`h3`,
	`h4`,
	`.review-heading`,
}

var genericDate = Cascade{
	`.date`,
	`.review-date`,
	`[itemprop="datePublished"]`,
	`.timestamp`,
	`time`,
	`.published-date`,
	`.submit-date`,
}

var genericText = Cascade{
	`.review-text`,
	`.review-content`,
	`[itemprop="reviewBody"]`,
	`.description`,
	`.comment-text`,
	`.review-body`,
	`p`,
}

const genericVerified = `.verified-purchase, .verified-buyer, .verified-purchaser`

// genericScrollLimit bounds the incremental scroll used to trigger lazy loading.
const genericScrollLimit = 10000

// Amazon returns the strategy for amazon.* review markup.
func Amazon() *Strategy {
	return &Strategy{
		Name:       NameAmazon,
		Containers: Cascade{amazonReview},
		Rating:     CascadeRating(Cascade{amazonRating}, FirstToken),
		Title:      Cascade{amazonTitle},
		Date:       Cascade{amazonDate},
		Text:       Cascade{amazonBody},
		Verified:   amazonVerified,
		Prepare:    []PrepareFunc{expandTruncated(amazonReadMore)},
	}
}

func Walmart() *Strategy {
	return &Strategy{
		Name:       NameWalmart,
		Containers: Cascade{walmartReview},
		Rating: LabelRating(Cascade{walmartRating}, "aria-label", func(s string) string {
			return StripLabel(s, "stars")
		}),
		Title:    Cascade{walmartTitle},
		Date:     Cascade{walmartDate},
		Text:     Cascade{walmartBody},
		Verified: walmartVerified,
		Prepare:  []PrepareFunc{openTab(walmartTab)},
	}
}

func BestBuy() *Strategy {
	return &Strategy{
		Name:       NameBestBuy,
		Containers: Cascade{bestBuyReview},
		Rating:     LabelRating(Cascade{bestBuyRating}, "aria-label", DigitsOnly),
		Title:      Cascade{bestBuyTitle},
		Date:       Cascade{bestBuyDate},
		Text:       Cascade{bestBuyBody},
		Verified:   bestBuyVerified,
		Prepare:    []PrepareFunc{openTab(bestBuyTab)},
	}
}

// Generic returns the heuristic strategy used for unknown sites.
func Generic() *Strategy {
	return &Strategy{
		Name:          NameGeneric,
		Containers:    genericContainers,
		Rating:        HeuristicRating(genericRating, genericStars),
		Title:         genericTitle,
		Date:          genericDate,
		Text:          genericText,
		Verified:      genericVerified,
		JoinText:      true,
		ResidualText:  true,
		MinTextLength: 10,
		Prepare:       []PrepareFunc{scrollThrough(genericScrollLimit)},
	}
}

// expandTruncated clicks every "read more" toggle so full review bodies are
// rendered. Failed clicks are ignored.
func expandTruncated(selector string) PrepareFunc {
	return func(ctx context.Context, doc dom.Document, p pacing.Pauser, logger *slog.Logger) error {
		toggles, err := doc.QuerySelectorAll(selector)
		if err != nil {
			return err
		}

		for _, toggle := range toggles {
			c, ok := toggle.(dom.Clicker)
			if !ok {
				continue
			}
			if err := c.Click(); err != nil {
				logger.Debug("could not expand review", "selector", selector, "error", err)
			}
			if err := p.Pause(ctx, pacing.Brief); err != nil {
				return err
			}
		}
		return nil
	}
}

// openTab clicks the reviews tab when present and waits for it to render.
func openTab(selector string) PrepareFunc {
	return func(ctx context.Context, doc dom.Document, p pacing.Pauser, logger *slog.Logger) error {
		tab, err := doc.QuerySelector(selector)
		if err != nil {
			logger.Debug("reviews tab query failed", "selector", selector, "error", err)
		} else if tab != nil {
			if err := doc.Click(selector); err != nil {
				logger.Warn("could not open reviews tab", "selector", selector, "error", err)
			}
		}
		return p.Pause(ctx, pacing.Tab)
	}
}

// scrollThrough scrolls down the page to trigger lazily rendered reviews.
func scrollThrough(limit int) PrepareFunc {
	return func(ctx context.Context, doc dom.Document, p pacing.Pauser, logger *slog.Logger) error {
		if err := doc.ScrollThrough(limit); err != nil && !errors.Is(err, dom.ErrNotInteractive) {
			logger.Warn("could not scroll page", "error", err)
		}
		return p.Pause(ctx, pacing.Tab)
	}
}
