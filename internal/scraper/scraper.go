// Package scraper runs a complete review extraction for one product URL:
// open the page, get past overlays, find the reviews and extract them.
package scraper

import (
	"context"
	"errors"

	"github.com/maltedev/review-scraper/internal/dom"
)

var (
	ErrNoURL      = errors.New("no URL provided")
	ErrInvalidURL = errors.New("invalid URL")
	ErrBlocked    = errors.New("blocked by anti-bot protection")
)

// Page is an opened, navigated page.
type Page interface {
	dom.Document
	// Blocked reports whether the page is a bot check instead of content.
	Blocked() (reason string, blocked bool, err error)
	Close() error
}

type Opener interface {
	Open(ctx context.Context, url string) (Page, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, url string) (Page, error)

func (f OpenerFunc) Open(ctx context.Context, url string) (Page, error) {
	return f(ctx, url)
}
