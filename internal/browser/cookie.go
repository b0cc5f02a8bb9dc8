package browser

import (
	"context"
	"log/slog"

	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/pacing"
)

var cookieSelectors = []string{
	`#onetrust-accept-btn-handler`,
	`.accept-cookies`,
	`button[aria-label*="Accept"]`,
	`button[aria-label*="accept"]`,
	`button:has-text("Accept")`,
	`button:has-text("Accept All")`,
	`button:has-text("Allow all")`,
	`button:has-text("I accept")`,
	`button[data-testid*="cookie-accept"]`,
	`.cookie-banner button`,
	`#cookie-banner button`,
}

// DismissCookieNotice clicks the first cookie consent button present on the
// page. A failed click is ignored. It reports whether a button was found.
func DismissCookieNotice(ctx context.Context, doc dom.Document, p pacing.Pauser, logger *slog.Logger) (bool, error) {
	for _, selector := range cookieSelectors {
		button, err := doc.QuerySelector(selector)
		if err != nil {
			logger.Debug("cookie selector failed", "selector", selector, "error", err)
			continue
		}
		if button == nil {
			continue
		}

		if err := doc.Click(selector); err != nil {
			logger.Debug("could not dismiss cookie notice", "selector", selector, "error", err)
		}
		return true, p.Pause(ctx, pacing.Short)
	}
	return false, nil
}
