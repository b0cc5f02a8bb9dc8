package browser

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/maltedev/review-scraper/internal/dom"
)

// Page is an opened page: a document plus the page level checks the
// scraper needs before extraction.
type Page struct {
	*PageDocument
	page playwright.Page
}

func newPage(page playwright.Page) *Page {
	return &Page{PageDocument: NewPageDocument(page), page: page}
}

// Blocked reports whether the page is a bot check or an error page instead
// of the requested content.
func (p *Page) Blocked() (string, bool, error) {
	title, err := p.page.Title()
	if err != nil {
		return "", false, fmt.Errorf("failed to get page title: %w", err)
	}
	return DetectBlock(title, p.PageDocument)
}

func (p *Page) Close() error {
	return p.page.Close()
}

var titleMarkers = []string{
	"robot check",
	"captcha",
	"access denied",
	"attention required",
	"are you a human",
	"tut uns leid",
}

// blockSelectors only match elements that exist on interstitial block
// pages. Widget classes like g-recaptcha are left out because product pages
// embed them in review and newsletter forms.
var blockSelectors = []string{
	"#captchacharacters",
	"form[action*='Captcha']",
	"form[action*='validateCaptcha']",
	"#px-captcha",
	"#challenge-form",
	"#cf-challenge-running",
}

// headingSelector and headingMarkers cover block pages whose only tell is
// the heading text.
const headingSelector = ".a-box-inner h4, h1, h2"

var headingMarkers = []string{
	"not a robot",
	"enter the characters you see below",
	"unusual traffic from your computer",
	"klicke auf die schaltfläche unten",
}

// DetectBlock checks the title and then the document for bot check and
// block page markers. It returns the marker that matched.
func DetectBlock(title string, doc dom.Node) (string, bool, error) {
	lower := strings.ToLower(title)
	for _, m := range titleMarkers {
		if strings.Contains(lower, m) {
			return m, true, nil
		}
	}

	for _, sel := range blockSelectors {
		node, err := doc.QuerySelector(sel)
		if err != nil {
			return "", false, err
		}
		if node != nil {
			return sel, true, nil
		}
	}

	headings, err := doc.QuerySelectorAll(headingSelector)
	if err != nil {
		return "", false, err
	}
	for _, h := range headings {
		text, err := h.Text()
		if err != nil {
			return "", false, err
		}
		text = strings.ToLower(text)
		for _, m := range headingMarkers {
			if strings.Contains(text, m) {
				return m, true, nil
			}
		}
	}
	return "", false, nil
}
