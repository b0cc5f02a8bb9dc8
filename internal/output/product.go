package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/maltedev/review-scraper/internal/models"
)

// ProductColumns is the header row of a batch export.
var ProductColumns = []string{
	"Retailer", "Product ID", "Product Name", "Rating", "Date", "In Date Range", "Verified", "Title", "Text",
}

// WriteProductCSV writes reviews from several product pages, one line per
// review, quoted the same way as WriteCSV. "In Date Range" is "No" only for
// reviews marked outside the requested range.
func WriteProductCSV(w io.Writer, reviews []models.ProductReview) error {
	bw := bufio.NewWriter(w)

	if err := writeCSVLine(bw, ProductColumns); err != nil {
		return err
	}
	for _, r := range reviews {
		if err := writeCSVLine(bw, productRow(r)); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func productRow(r models.ProductReview) []string {
	inRange := "Yes"
	if r.InDateRange != nil && !*r.InDateRange {
		inRange = "No"
	}
	return []string{
		r.Retailer, r.ProductID, r.ProductName,
		r.Rating, r.Date, inRange, fmt.Sprintf("%t", r.Verified), r.Title, r.Text,
	}
}
