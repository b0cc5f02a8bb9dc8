package extract

import (
	"fmt"
	"strings"

	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/models"
)

type FieldStatus int

const (
	// FieldFound means a selector matched and produced the value.
	FieldFound FieldStatus = iota
	// FieldDefault means nothing usable matched and the sentinel was used.
	FieldDefault
)

func (s FieldStatus) String() string {
	if s == FieldFound {
		return "found"
	}
	return "default"
}

// Field is the outcome of extracting one field from one review node.
type Field struct {
	Value    string
	Status   FieldStatus
	Selector string
}

func found(value, selector string) Field {
	return Field{Value: value, Status: FieldFound, Selector: selector}
}

func fallback(value string) Field {
	return Field{Value: value, Status: FieldDefault}
}

// RatingParser reads the rating of one review node.
type RatingParser func(n dom.Node) (Field, error)

func trimmedText(n dom.Node) (string, error) {
	text, err := n.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// CascadeRating reads the text of the first match and applies transform.
// Site strategies use it with their own transforms.
func CascadeRating(c Cascade, transform func(string) string) RatingParser {
	return func(n dom.Node) (Field, error) {
		match, selector, err := FirstMatch(n, c)
		if err != nil || match == nil {
			return fallback(models.NotAvailable), err
		}

		text, err := trimmedText(match)
		if err != nil {
			return fallback(models.NotAvailable), err
		}
		return found(transform(text), selector), nil
	}
}

// LabelRating reads an accessibility label from the first match and applies
// transform. A missing label yields the sentinel.
func LabelRating(c Cascade, attr string, transform func(string) string) RatingParser {
	return func(n dom.Node) (Field, error) {
		match, selector, err := FirstMatch(n, c)
		if err != nil || match == nil {
			return fallback(models.NotAvailable), err
		}

		label, ok, err := match.Attribute(attr)
		if err != nil {
			return fallback(models.NotAvailable), fmt.Errorf("failed to read %s: %w", attr, err)
		}
		if !ok {
			return fallback(models.NotAvailable), nil
		}
		return found(transform(label), selector), nil
	}
}

// HeuristicRating tries each candidate in order: the first number in its text,
// then the width percentage of its inline style. Only when no candidate gives a
// rating are the star icons anywhere in the node counted.
func HeuristicRating(candidates Cascade, stars string) RatingParser {
	return func(n dom.Node) (Field, error) {
		for _, selector := range candidates {
			match, err := n.QuerySelector(selector)
			if err != nil {
				return fallback(models.NotAvailable), fmt.Errorf("failed to query %q: %w", selector, err)
			}
			if match == nil {
				continue
			}

			text, err := trimmedText(match)
			if err != nil {
				return fallback(models.NotAvailable), err
			}
			if rating, ok := NumericRating(text); ok {
				return found(rating, selector), nil
			}

			style, ok, err := match.Attribute("style")
			if err != nil {
				return fallback(models.NotAvailable), fmt.Errorf("failed to read style: %w", err)
			}
			if !ok {
				continue
			}
			if rating, ok := PercentRating(style); ok {
				return found(rating, selector), nil
			}
		}

		if stars != "" {
			icons, err := n.QuerySelectorAll(stars)
			if err != nil {
				return fallback(models.NotAvailable), fmt.Errorf("failed to query %q: %w", stars, err)
			}
			if rating, ok := StarCountRating(len(icons)); ok {
				return found(rating, stars), nil
			}
		}

		return fallback(models.NotAvailable), nil
	}
}

// parseTitle returns the trimmed text of the first match, or "".
func parseTitle(n dom.Node, c Cascade) (Field, error) {
	match, selector, err := FirstMatch(n, c)
	if err != nil || match == nil {
		return fallback(""), err
	}

	text, err := trimmedText(match)
	if err != nil {
		return fallback(""), err
	}
	return found(text, selector), nil
}

// parseDate returns the trimmed text of the first match. An empty match falls
// back to its datetime attribute, then to the sentinel.
func parseDate(n dom.Node, c Cascade) (Field, error) {
	match, selector, err := FirstMatch(n, c)
	if err != nil || match == nil {
		return fallback(models.NotAvailable), err
	}

	text, err := trimmedText(match)
	if err != nil {
		return fallback(models.NotAvailable), err
	}
	if text != "" {
		return found(text, selector), nil
	}

	dt, ok, err := match.Attribute("datetime")
	if err != nil {
		return fallback(models.NotAvailable), fmt.Errorf("failed to read datetime: %w", err)
	}
	if ok && strings.TrimSpace(dt) != "" {
		return found(strings.TrimSpace(dt), selector), nil
	}
	return fallback(models.NotAvailable), nil
}

// parseText returns the trimmed text of the first match, or "".
func parseText(n dom.Node, c Cascade) (Field, error) {
	return parseTitle(n, c)
}

// parseJoinedText joins the trimmed, non-empty texts of every node matched by
// the winning selector. matched is false when no selector matched at all.
func parseJoinedText(n dom.Node, c Cascade) (field Field, matched bool, err error) {
	matches, selector, err := FirstMatchAll(n, c)
	if err != nil || len(matches) == 0 {
		return fallback(""), false, err
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		text, err := trimmedText(m)
		if err != nil {
			return fallback(""), true, err
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return found(strings.Join(parts, " "), selector), true, nil
}

// residualText is the node's own text with the already extracted metadata
// removed, for nodes that have no dedicated body container.
func residualText(n dom.Node, title, date, rating string) (Field, error) {
	text, err := trimmedText(n)
	if err != nil {
		return fallback(""), err
	}

	text = RemoveFirst(text, title)
	if date != models.NotAvailable {
		text = RemoveFirst(text, date)
	}
	if rating != models.NotAvailable {
		text = RemoveFirst(text, rating)
	}
	return fallback(CollapseWhitespace(text)), nil
}

func parseVerified(n dom.Node, marker string) (bool, error) {
	if marker == "" {
		return false, nil
	}

	match, err := n.QuerySelector(marker)
	if err != nil {
		return false, fmt.Errorf("failed to query %q: %w", marker, err)
	}
	return match != nil, nil
}
