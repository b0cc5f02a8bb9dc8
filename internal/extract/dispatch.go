package extract

import (
	"net/url"
	"strings"
)

var siteTable = []struct {
	marker   string
	strategy func() *Strategy
}{
	{"amazon", Amazon},
	{"walmart", Walmart},
	{"bestbuy", BestBuy},
}

// Dispatch picks the strategy for a hostname by substring match. Unknown
// hosts get the generic strategy, so dispatch always succeeds.
func Dispatch(host string) *Strategy {
	host = strings.ToLower(host)
	for _, site := range siteTable {
		if strings.Contains(host, site.marker) {
			return site.strategy()
		}
	}
	return Generic()
}

// DispatchURL dispatches on the hostname of rawURL. An unparsable URL gets
// the generic strategy.
func DispatchURL(rawURL string) *Strategy {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Generic()
	}
	return Dispatch(u.Hostname())
}
