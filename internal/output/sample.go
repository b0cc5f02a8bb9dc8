package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/maltedev/review-scraper/internal/models"
)

const (
	SampleSize     = 3
	SampleTextSize = 150
)

// Sample returns the first n records.
func Sample(records []models.Review, n int) []models.Review {
	if n < 0 {
		n = 0
	}
	if len(records) < n {
		n = len(records)
	}
	return records[:n]
}

// Truncate shortens text to max runes and appends "..." when it was cut.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// PrintSample prints the count and up to SampleSize reviews with their text
// truncated.
func PrintSample(w io.Writer, records []models.Review) {
	fmt.Fprintf(w, "Extracted %d reviews\n", len(records))

	sample := Sample(records, SampleSize)
	if len(sample) == 0 {
		return
	}

	t := NewTable(w)
	t.AppendHeader(table.Row{"#", "Rating", "Date", "Verified", "Title", "Text"})
	for i, r := range sample {
		t.AppendRow(table.Row{i + 1, r.Rating, r.Date, r.Verified, r.Title, Truncate(r.Text, SampleTextSize)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Text", WidthMax: 60},
	})
	t.Render()
}
