package extract

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/models"
	"github.com/maltedev/review-scraper/internal/pacing"
)

// PrepareFunc runs site specific interactions before content expansion.
type PrepareFunc func(ctx context.Context, doc dom.Document, p pacing.Pauser, logger *slog.Logger) error

// Strategy is the selector configuration for one family of sites. The same
// extraction code runs every strategy.
type Strategy struct {
	Name string

	// Containers lists review container selectors by priority; the first one
	// that matches at least one node is used.
	Containers Cascade

	Rating   RatingParser
	Title    Cascade
	Date     Cascade
	Text     Cascade
	Verified string

	// JoinText concatenates every node matched by the text selector instead
	// of reading only the first.
	JoinText bool
	// ResidualText falls back to the container text minus title, date and
	// rating when no text selector matches.
	ResidualText bool
	// MinTextLength rejects records whose text is not longer than this.
	// Zero keeps every record.
	MinTextLength int

	Prepare []PrepareFunc
}

// Extraction is a review together with how each field was obtained.
type Extraction struct {
	Review models.Review
	Rating Field
	Title  Field
	Date   Field
	Text   Field
}

// Defaults lists the fields that fell back to their sentinel.
func (e Extraction) Defaults() []string {
	var names []string
	for _, f := range []struct {
		name  string
		field Field
	}{
		{"rating", e.Rating},
		{"title", e.Title},
		{"date", e.Date},
		{"text", e.Text},
	} {
		if f.field.Status == FieldDefault {
			names = append(names, f.name)
		}
	}
	return names
}

// ExtractNode reads one review container. An error means the node could not
// be read at all and should be skipped; missing fields are not errors.
func (s *Strategy) ExtractNode(n dom.Node) (Extraction, error) {
	var ext Extraction
	var err error

	ext.Rating, err = s.Rating(n)
	if err != nil {
		return ext, fmt.Errorf("rating: %w", err)
	}

	ext.Title, err = parseTitle(n, s.Title)
	if err != nil {
		return ext, fmt.Errorf("title: %w", err)
	}

	ext.Date, err = parseDate(n, s.Date)
	if err != nil {
		return ext, fmt.Errorf("date: %w", err)
	}

	if s.JoinText {
		var matched bool
		ext.Text, matched, err = parseJoinedText(n, s.Text)
		if err == nil && !matched && s.ResidualText {
			ext.Text, err = residualText(n, ext.Title.Value, ext.Date.Value, ext.Rating.Value)
		}
	} else {
		ext.Text, err = parseText(n, s.Text)
	}
	if err != nil {
		return ext, fmt.Errorf("text: %w", err)
	}

	verified, err := parseVerified(n, s.Verified)
	if err != nil {
		return ext, fmt.Errorf("verified: %w", err)
	}

	ext.Review = models.Review{
		Rating:   ext.Rating.Value,
		Title:    ext.Title.Value,
		Date:     ext.Date.Value,
		Text:     ext.Text.Value,
		Verified: verified,
	}
	return ext, nil
}

// Admit reports whether a record passes the strategy's admission rule.
// Text length is counted in characters, not bytes.
func (s *Strategy) Admit(r models.Review) bool {
	if s.MinTextLength <= 0 {
		return true
	}
	return utf8.RuneCountInString(r.Text) > s.MinTextLength
}
