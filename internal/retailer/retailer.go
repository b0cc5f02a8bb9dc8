// Package retailer derives retailer and product details from product URLs and
// provides the review identity and date range checks used by batch jobs.
package retailer

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const Unknown = "unknown"

var hostRetailers = []struct {
	fragment string
	name     string
}{
	{"amazon.", "amazon"},
	{"walmart.com", "walmart"},
	{"bestbuy.com", "bestbuy"},
	{"tesco.com", "tesco"},
	{"sainsburys.co.uk", "sainsburys"},
	{"asda.com", "asda"},
	{"morrisons.com", "morrisons"},
}

var (
	weightSuffix   = regexp.MustCompile(`\d+g$`)
	numberSuffix   = regexp.MustCompile(`\d+$`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Detect names the retailer of rawURL from its hostname, or Unknown.
func Detect(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Unknown
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Unknown
	}

	for _, r := range hostRetailers {
		if strings.Contains(host, r.fragment) {
			return r.name
		}
	}
	return Unknown
}

// Product identifies the product a page belongs to.
type Product struct {
	ID   string `json:"product_id"`
	Name string `json:"product_name"`
}

// ProductFromURL takes the last path segment as the product ID and builds a
// readable name from the URL slug, prefixed with the retailer. ASDA pages put
// the slug one segment before the ID.
func ProductFromURL(rawURL string) Product {
	fallback := Product{ID: Unknown, Name: "Product from " + rawURL}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return fallback
	}

	parts := strings.Split(u.Path, "/")
	last := parts[len(parts)-1]

	p := Product{ID: last}
	if p.ID == "" {
		p.ID = Unknown
	}

	name := Detect(rawURL)
	if name == "asda" {
		if len(parts) >= 3 {
			p.Name = "ASDA " + slugName(parts[len(parts)-2])
		} else {
			p.Name = "ASDA Product " + last
		}
		return p
	}

	p.Name = slugName(last)
	if len([]rune(p.Name)) < 3 {
		p.Name = fallback.Name
	}
	if name != Unknown {
		p.Name = title(name) + " " + p.Name
	}
	return p
}

// slugName turns "heinz-baked-beans-415g" into "Heinz Baked Beans".
func slugName(slug string) string {
	name := strings.ReplaceAll(slug, "-", " ")
	name = weightSuffix.ReplaceAllString(name, "")
	name = numberSuffix.ReplaceAllString(name, "")
	name = strings.TrimSpace(whitespaceRuns.ReplaceAllString(name, " "))
	return title(name)
}

// title upper-cases the first letter of each word and leaves the rest alone.
// Casers carry state, so each call gets its own.
func title(s string) string {
	return cases.Title(language.English, cases.NoLower).String(s)
}
