// Package output writes extracted reviews to CSV or XLSX files and renders a
// short sample of them for the terminal.
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maltedev/review-scraper/internal/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Columns is the header row shared by both formats.
var Columns = []string{"Rating", "Date", "Verified", "Title", "Text"}

func row(r models.Review) []string {
	return []string{r.Rating, r.Date, fmt.Sprintf("%t", r.Verified), r.Title, r.Text}
}

// FormatFor picks the format from the file extension. Only ".csv" selects
// CSV; any other name is written as XLSX.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// Write saves records to path in the format chosen by FormatFor.
func Write(path string, records []models.Review) error {
	switch FormatFor(path) {
	case FormatCSV:
		return WriteCSVFile(path, records)
	default:
		return WriteXLSXFile(path, records)
	}
}
