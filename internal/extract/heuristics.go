package extract

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberPattern     = regexp.MustCompile(`\d+(\.\d+)?`)
	widthPattern      = regexp.MustCompile(`width:\s*(\d+)%`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	nonNumericPattern = regexp.MustCompile(`[^0-9.]`)
)

// NumericRating returns the first decimal number in text.
func NumericRating(text string) (string, bool) {
	m := numberPattern.FindString(text)
	return m, m != ""
}

// PercentRating converts an inline style such as "width: 80%" to a five star
// rating: percentage / 20 formatted to one decimal place. Rounding applies to
// the exact value of the float64 quotient, so 3% (0.1499...) yields "0.1",
// and a true tie goes to the larger tenth.
func PercentRating(style string) (string, bool) {
	m := widthPattern.FindStringSubmatch(style)
	if len(m) < 2 {
		return "", false
	}

	pct, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}

	tenths := roundTenths(float64(pct) / 20)
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10), true
}

func roundTenths(x float64) int64 {
	scaled := new(big.Rat).SetFloat64(x)
	scaled.Mul(scaled, big.NewRat(10, 1))

	n := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	frac := new(big.Rat).Sub(scaled, new(big.Rat).SetInt(n))
	if frac.Cmp(big.NewRat(1, 2)) >= 0 {
		n.Add(n, big.NewInt(1))
	}
	return n.Int64()
}

// StarCountRating formats a count of filled star icons as a rating.
func StarCountRating(stars int) (string, bool) {
	if stars <= 0 {
		return "", false
	}
	return strconv.Itoa(stars), true
}

// FirstToken returns text up to its first space, as in "4.0 out of 5 stars".
func FirstToken(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		return text[:i]
	}
	return text
}

// StripLabel removes the first occurrence of label and trims the result.
func StripLabel(text, label string) string {
	return strings.TrimSpace(strings.Replace(text, label, "", 1))
}

// DigitsOnly keeps only digits and dots.
func DigitsOnly(text string) string {
	return nonNumericPattern.ReplaceAllString(text, "")
}

func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// RemoveFirst deletes the first literal occurrence of sub from text.
func RemoveFirst(text, sub string) string {
	if sub == "" {
		return text
	}
	return strings.Replace(text, sub, "", 1)
}
