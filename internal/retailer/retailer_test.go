package retailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.amazon.co.uk/dp/B000", "amazon"},
		{"https://www.walmart.com/ip/123", "walmart"},
		{"https://www.bestbuy.com/site/tv/6501.p", "bestbuy"},
		{"https://www.tesco.com/groceries/en-GB/products/299362633", "tesco"},
		{"https://www.sainsburys.co.uk/gol-ui/product/heinz-beans", "sainsburys"},
		{"https://groceries.asda.com/product/beans/heinz-beans-415g/910000449497", "asda"},
		{"https://groceries.morrisons.com/products/heinz-beans/111", "morrisons"},
		{"https://shop.example.com/p/1?ref=tesco.com", Unknown},
		{"not a url", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.url))
		})
	}
}

func TestProductFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Product
	}{
		{
			name: "slug with weight suffix",
			url:  "https://www.sainsburys.co.uk/gol-ui/product/heinz-baked-beans-415g",
			want: Product{ID: "heinz-baked-beans-415g", Name: "Sainsburys Heinz Baked Beans"},
		},
		{
			name: "numeric id",
			url:  "https://www.tesco.com/groceries/en-GB/products/299362633",
			want: Product{ID: "299362633", Name: "Tesco Product from https://www.tesco.com/groceries/en-GB/products/299362633"},
		},
		{
			name: "asda takes the name from the segment before the id",
			url:  "https://groceries.asda.com/product/baked-beans/heinz-beanz-415g/910000449497",
			want: Product{ID: "910000449497", Name: "ASDA Heinz Beanz"},
		},
		{
			name: "short asda path",
			url:  "https://asda.com/910",
			want: Product{ID: "910", Name: "ASDA Product 910"},
		},
		{
			name: "unknown retailer has no prefix",
			url:  "https://shop.example.com/p/steel-kettle",
			want: Product{ID: "steel-kettle", Name: "Steel Kettle"},
		},
		{
			name: "trailing slash",
			url:  "https://shop.example.com/",
			want: Product{ID: Unknown, Name: "Product from https://shop.example.com/"},
		},
		{
			name: "unparseable",
			url:  "::nope",
			want: Product{ID: Unknown, Name: "Product from ::nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProductFromURL(tt.url))
		})
	}
}
