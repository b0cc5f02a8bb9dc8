package browser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/pacing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.Headless)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 1920, opts.ViewportWidth)
	assert.Equal(t, 1080, opts.ViewportHeight)
	assert.Equal(t, "en-US", opts.Locale)
}

func TestDetectBlock(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		html    string
		blocked bool
	}{
		{"amazon robot check", "Robot Check", "", true},
		{"captcha input", "Amazon.com", `<input id="captchacharacters">`, true},
		{"captcha form", "Amazon.de", `<form action="/errors/validateCaptcha"><input name="field-keywords"></form>`, true},
		{"robot heading", "Amazon.com", `<div class="a-box-inner"><h4>Enter the characters you see below. Sorry, we just need to make sure you're not a robot.</h4></div>`, true},
		{"cloudflare", "Attention Required! | Cloudflare", "", true},
		{"perimeterx", "Walmart.com", `<div id="px-captcha"></div>`, true},
		{"unusual traffic", "Sorry", "<h1>Our systems have detected unusual traffic from your computer</h1>", true},
		{"product page", "Acme Kettle : Amazon.com", "<div data-hook=\"review\"></div>", false},
		{
			"recaptcha in review form",
			"Acme Kettle - Customer Reviews",
			`<div class="review-card"><p>Great kettle, boils fast.</p></div>
			<form id="write-review" action="/reviews/submit"><textarea></textarea><div class="g-recaptcha" data-sitekey="x"></div></form>`,
			false,
		},
		{"robot product", "Acme Robot Vacuum Reviews", `<h1>Acme Robot Vacuum</h1><div class="review"><p>Best robot vacuum I have owned.</p></div>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := dom.ParseHTML(tt.html)
			require.NoError(t, err)

			reason, blocked, err := DetectBlock(tt.title, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.blocked, blocked)
			if tt.blocked {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

// clickDoc is a static document that records clicks.
type clickDoc struct {
	*dom.HTMLDocument
	clicks   []string
	clickErr error
}

func (d *clickDoc) Click(selector string) error {
	d.clicks = append(d.clicks, selector)
	return d.clickErr
}

type countingPauser struct {
	kinds []pacing.Kind
}

func (p *countingPauser) Pause(ctx context.Context, kind pacing.Kind) error {
	p.kinds = append(p.kinds, kind)
	return ctx.Err()
}

func newClickDoc(t *testing.T, html string) *clickDoc {
	doc, err := dom.ParseHTML(html)
	require.NoError(t, err)
	return &clickDoc{HTMLDocument: doc}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDismissCookieNotice(t *testing.T) {
	doc := newClickDoc(t, `<div class="cookie-banner"><button>OK</button></div><button class="accept-cookies">Accept</button>`)
	p := &countingPauser{}

	found, err := DismissCookieNotice(context.Background(), doc, p, discardLogger())
	require.NoError(t, err)

	assert.True(t, found)
	assert.Equal(t, []string{".accept-cookies"}, doc.clicks)
	assert.Equal(t, []pacing.Kind{pacing.Short}, p.kinds)
}

func TestDismissCookieNoticeIgnoresClickFailure(t *testing.T) {
	doc := newClickDoc(t, `<button id="onetrust-accept-btn-handler">Accept</button>`)
	doc.clickErr = errors.New("covered by overlay")

	found, err := DismissCookieNotice(context.Background(), doc, &countingPauser{}, discardLogger())
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDismissCookieNoticeNone(t *testing.T) {
	doc := newClickDoc(t, `<main>No banner</main>`)
	p := &countingPauser{}

	found, err := DismissCookieNotice(context.Background(), doc, p, discardLogger())
	require.NoError(t, err)

	assert.False(t, found)
	assert.Empty(t, doc.clicks)
	assert.Empty(t, p.kinds)
}
