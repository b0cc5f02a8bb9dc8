package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/maltedev/review-scraper/internal/browser"
	"github.com/maltedev/review-scraper/internal/config"
	"github.com/maltedev/review-scraper/internal/output"
	"github.com/maltedev/review-scraper/internal/pacing"
	"github.com/maltedev/review-scraper/internal/scraper"
)

type scrapeOptions struct {
	url        string
	output     string
	proxy      string
	maxReviews int
	delayMs    int
	timeoutMs  int
	visible    bool
}

var scrapeOpts scrapeOptions

func init() {
	f := scrapeCmd.Flags()
	f.StringVarP(&scrapeOpts.url, "url", "u", "", "Product page URL.")
	f.StringVarP(&scrapeOpts.output, "output", "o", "reviews.xlsx", "Output file (.csv or .xlsx).")
	f.StringVarP(&scrapeOpts.proxy, "proxy", "p", "", "Proxy server, e.g. http://host:port.")
	f.IntVarP(&scrapeOpts.maxReviews, "max-reviews", "m", scraper.DefaultMaxReviews, "Maximum number of reviews to extract.")
	f.IntVarP(&scrapeOpts.delayMs, "delay", "d", 1000, "Base delay between interactions in milliseconds.")
	f.IntVarP(&scrapeOpts.timeoutMs, "timeout", "t", 30000, "Page load timeout in milliseconds.")
	f.BoolVarP(&scrapeOpts.visible, "visible", "v", false, "Show the browser window.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape --url <product url> [--output reviews.xlsx]",
	Short: "Opens a product page in a browser and saves its reviews.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := scraper.ParseURL(scrapeOpts.url); err != nil {
			return err
		}

		b, err := browser.New(browserOptions(cfg, scrapeOpts), logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := b.Close(); err != nil {
				logger.Warn("failed to close browser", "error", err)
			}
		}()

		opener := scraper.OpenerFunc(func(ctx context.Context, url string) (scraper.Page, error) {
			page, err := b.Open(ctx, url)
			if err != nil {
				return nil, err
			}
			return page, nil
		})

		return runScrape(cmd.Context(), opener, scrapeOpts, cmd.OutOrStdout(), logger)
	},
}

func browserOptions(cfg *config.Config, opts scrapeOptions) *browser.Options {
	bo := browser.DefaultOptions()
	bo.Headless = !opts.visible
	bo.Timeout = time.Duration(opts.timeoutMs) * time.Millisecond
	bo.ProxyServer = opts.proxy
	bo.MaxRetries = cfg.Scraper.MaxRetries
	bo.ViewportWidth = cfg.Browser.ViewportWidth
	bo.ViewportHeight = cfg.Browser.ViewportHeight
	bo.Locale = cfg.Browser.Locale
	bo.TimezoneID = cfg.Browser.TimezoneID
	return bo
}

// runScrape extracts the reviews and writes them. Nothing is written when
// the extraction fails.
func runScrape(ctx context.Context, opener scraper.Opener, opts scrapeOptions, w io.Writer, logger *slog.Logger) error {
	pauser := pacing.NewJitterPauser(time.Duration(opts.delayMs) * time.Millisecond)
	svc := scraper.NewService(opener, pauser, logger).WithMaxReviews(opts.maxReviews)

	start := time.Now()
	result, err := svc.Scrape(ctx, scraper.Request{URL: opts.url, MaxReviews: opts.maxReviews})
	if err != nil {
		return fmt.Errorf("failed to scrape reviews: %w", err)
	}

	if err := output.Write(opts.output, result.Records); err != nil {
		return err
	}

	logger.Info("reviews saved",
		"file", opts.output,
		"strategy", result.Strategy,
		"count", len(result.Records),
		"duration", time.Since(start).Round(time.Millisecond))

	output.PrintSample(w, result.Records)
	return nil
}
