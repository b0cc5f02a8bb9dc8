package retailer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/maltedev/review-scraper/internal/models"
)

// ErrInvalidDateRange is returned for a date bound that is not YYYY-MM-DD or
// a range that ends before it starts.
var ErrInvalidDateRange = errors.New("invalid date range")

var (
	submittedPattern = regexp.MustCompile(`Submitted\s+(\d{1,2})/(\d{1,2})/(\d{4})`)
	ordinalPattern   = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	relativePattern  = regexp.MustCompile(`(?i)\b(\d+|an?)\s+(day|week|month|year)s?\s+ago\b`)
)

// ParseDate reads the date shown on a review. It understands Amazon's
// "Reviewed in ... on May 1, 2024", Morrisons' "Submitted 12/03/2024, by ...",
// ordinal days such as "9th April 2025" and relative dates such as
// "2 months ago", then falls back to dateparse for everything else.
func ParseDate(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == models.NotAvailable {
		return time.Time{}, false
	}

	if m := submittedPattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}

	lower := strings.ToLower(text)
	switch {
	case lower == "today":
		return startOfDay(now), true
	case lower == "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), true
	}

	if m := relativePattern.FindStringSubmatch(text); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		day := startOfDay(now)
		switch strings.ToLower(m[2]) {
		case "day":
			return day.AddDate(0, 0, -n), true
		case "week":
			return day.AddDate(0, 0, -7*n), true
		case "month":
			return day.AddDate(0, -n, 0), true
		default:
			return day.AddDate(-n, 0, 0), true
		}
	}

	if i := strings.LastIndex(text, " on "); i >= 0 {
		text = text[i+len(" on "):]
	}
	text = ordinalPattern.ReplaceAllString(text, "$1")

	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange bounds review dates. Either end may be open; both ends are
// inclusive whole days.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange reads YYYY-MM-DD bounds. Empty strings leave that end open.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	var err error

	if r.From, err = parseBound(from); err != nil {
		return DateRange{}, err
	}
	if r.To, err = parseBound(to); err != nil {
		return DateRange{}, err
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return DateRange{}, fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange, to, from)
	}
	return r, nil
}

func parseBound(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDateRange, s)
	}
	return &t, nil
}

// IsZero reports whether the range is open at both ends.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

func (r DateRange) Contains(t time.Time) bool {
	day := startOfDay(t)
	if r.From != nil && day.Before(startOfDay(*r.From)) {
		return false
	}
	if r.To != nil && day.After(startOfDay(*r.To)) {
		return false
	}
	return true
}

// Mark reports whether a review dated date falls within the range. It
// returns nil when the range is open at both ends. A date that cannot be read
// is reported as outside the range.
func (r DateRange) Mark(date string, now time.Time) *bool {
	if r.IsZero() {
		return nil
	}

	in := false
	if t, ok := ParseDate(date, now); ok {
		in = r.Contains(t)
	}
	return &in
}
