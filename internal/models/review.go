package models

import "strings"

// NotAvailable is the sentinel for a rating or date that could not be found.
const NotAvailable = "N/A"

// Review is a single extracted customer review. Rating, Date and Text are
// always set, either with a value or with their sentinel. UniqueID and
// InDateRange are filled in when a review is stored.
type Review struct {
	Rating   string `json:"rating"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Text     string `json:"text"`
	Verified bool   `json:"verified"`

	UniqueID    string `json:"unique_id,omitempty"`
	InDateRange *bool  `json:"in_date_range,omitempty"`
}

// ProductReview is a stored review together with the product page it came
// from.
type ProductReview struct {
	Review
	Retailer    string `json:"retailer"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SourceURL   string `json:"source_url"`
}

// NewReview returns a review with the rating and date sentinels applied.
func NewReview() Review {
	return Review{
		Rating: NotAvailable,
		Date:   NotAvailable,
	}
}

func (r Review) HasRating() bool {
	return r.Rating != "" && r.Rating != NotAvailable
}

func (r Review) HasDate() bool {
	return r.Date != "" && r.Date != NotAvailable
}

// Validate reports the fields that break the record invariants.
func (r Review) Validate() []string {
	var problems []string

	if r.Rating == "" {
		problems = append(problems, "rating must be a value or N/A")
	}

	if r.Date == "" {
		problems = append(problems, "date must be a value or N/A")
	}

	if strings.TrimSpace(r.Text) == "" {
		problems = append(problems, "text is empty")
	}

	return problems
}
