package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/maltedev/review-scraper/internal/browser"
	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/extract"
	"github.com/maltedev/review-scraper/internal/models"
	"github.com/maltedev/review-scraper/internal/pacing"
)

const DefaultMaxReviews = 50

type Request struct {
	URL        string `json:"url"`
	MaxReviews int    `json:"max_reviews"`
}

type Result struct {
	URL        string            `json:"url"`
	Host       string            `json:"host"`
	Strategy   string            `json:"strategy"`
	ReviewsTab bool              `json:"reviews_tab"`
	Expansion  extract.Expansion `json:"expansion"`
	Candidates int               `json:"candidates"`
	Records    []models.Review   `json:"reviews"`
}

type Service struct {
	opener     Opener
	pauser     pacing.Pauser
	pipeline   *extract.Pipeline
	maxReviews int
	logger     *slog.Logger
}

func NewService(opener Opener, p pacing.Pauser, logger *slog.Logger) *Service {
	return &Service{
		opener:     opener,
		pauser:     p,
		pipeline:   extract.NewPipeline(p, logger),
		maxReviews: DefaultMaxReviews,
		logger:     logger.With("component", "scraper"),
	}
}

// WithMaxReviews sets the bound used for requests that do not carry one.
func (s *Service) WithMaxReviews(n int) *Service {
	if n > 0 {
		s.maxReviews = n
	}
	return s
}

// ParseURL validates a product URL. Only absolute http and https URLs are
// accepted.
func ParseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNoURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return u, nil
}

func (s *Service) bound(n int) int {
	if n <= 0 {
		return s.maxReviews
	}
	return n
}

// Scrape opens req.URL and extracts its reviews. Fatal problems (bad URL,
// navigation failure, a bot check) are returned as errors and produce no
// records; everything below the page level only reduces the result.
func (s *Service) Scrape(ctx context.Context, req Request) (*Result, error) {
	u, err := ParseURL(req.URL)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("url", u.String())
	logger.Info("scraping reviews", "max_reviews", s.bound(req.MaxReviews))

	page, err := s.opener.Open(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Warn("failed to close page", "error", err)
		}
	}()

	if err := s.pauser.Pause(ctx, pacing.Load); err != nil {
		return nil, err
	}

	reason, blocked, err := page.Blocked()
	if err != nil {
		logger.Warn("block check failed", "error", err)
	} else if blocked {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, reason)
	}

	if _, err := browser.DismissCookieNotice(ctx, page, s.pauser, logger); err != nil {
		return nil, err
	}

	tab, err := extract.OpenReviewsSection(ctx, page, s.pauser, logger)
	if err != nil {
		return nil, err
	}
	if !tab {
		logger.Info("no reviews section found, extracting from the page directly")
	}

	res, err := s.extract(ctx, page, u.Hostname(), req.MaxReviews)
	if err != nil {
		return nil, err
	}
	res.URL = u.String()
	res.ReviewsTab = tab
	return res, nil
}

// ExtractDocument runs the strategy for host over an already loaded document,
// such as a saved HTML page.
func (s *Service) ExtractDocument(ctx context.Context, doc dom.Document, host string, maxReviews int) (*Result, error) {
	return s.extract(ctx, doc, host, maxReviews)
}

func (s *Service) extract(ctx context.Context, doc dom.Document, host string, maxReviews int) (*Result, error) {
	strategy := extract.Dispatch(host)

	res, err := s.pipeline.Extract(ctx, doc, strategy, s.bound(maxReviews))
	if err != nil {
		return nil, fmt.Errorf("extraction interrupted: %w", err)
	}

	s.logger.Info("extracted reviews",
		"host", host,
		"strategy", strategy.Name,
		"count", len(res.Records),
		"expanded", res.Expansion.Expanded(),
	)

	return &Result{
		Host:       host,
		Strategy:   res.Strategy,
		Expansion:  res.Expansion,
		Candidates: res.Candidates,
		Records:    res.Records,
	}, nil
}
