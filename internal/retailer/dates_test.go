package retailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/review-scraper/internal/models"
)

var now = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
		ok   bool
	}{
		{"Reviewed in the United States on May 1, 2024", day(2024, time.May, 1), true},
		{"May 1, 2024", day(2024, time.May, 1), true},
		{"2024-05-01", day(2024, time.May, 1), true},
		{"3/2/2024", day(2024, time.March, 2), true},
		{"Submitted 12/03/2024, by Jo", day(2024, time.March, 12), true},
		{"9th April 2025", day(2025, time.April, 9), true},
		{"2 months ago", day(2025, time.April, 15), true},
		{"a week ago", day(2025, time.June, 8), true},
		{"3 days ago", day(2025, time.June, 12), true},
		{"yesterday", day(2025, time.June, 14), true},
		{models.NotAvailable, time.Time{}, false},
		{"", time.Time{}, false},
		{"Great product", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseDate(tt.text, now)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(startOfDay(got)), "got %s", got)
			}
		})
	}
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2024-01-01", "2024-12-31")
	require.NoError(t, err)
	require.NotNil(t, r.From)
	require.NotNil(t, r.To)
	assert.Equal(t, day(2024, time.January, 1), *r.From)

	r, err = ParseDateRange("", "")
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	r, err = ParseDateRange("2024-06-01", "")
	require.NoError(t, err)
	assert.Nil(t, r.To)

	_, err = ParseDateRange("01/06/2024", "")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = ParseDateRange("2024-06-02", "2024-06-01")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestDateRangeMark(t *testing.T) {
	r, err := ParseDateRange("2024-05-01", "2024-05-31")
	require.NoError(t, err)

	in := r.Mark("May 1, 2024", now)
	require.NotNil(t, in)
	assert.True(t, *in)

	in = r.Mark("Reviewed in the United Kingdom on 31 May 2024", now)
	require.NotNil(t, in)
	assert.True(t, *in, "the last day is inclusive")

	in = r.Mark("June 1, 2024", now)
	require.NotNil(t, in)
	assert.False(t, *in)

	in = r.Mark(models.NotAvailable, now)
	require.NotNil(t, in)
	assert.False(t, *in)

	assert.Nil(t, DateRange{}.Mark("May 1, 2024", now))
}

func TestDateRangeOpenEnd(t *testing.T) {
	r, err := ParseDateRange("2025-06-01", "")
	require.NoError(t, err)

	assert.True(t, r.Contains(day(2030, time.January, 1)))
	assert.False(t, r.Contains(day(2025, time.May, 31)))
	assert.True(t, *r.Mark("3 days ago", now))
}
