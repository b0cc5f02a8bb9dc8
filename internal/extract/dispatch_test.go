package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatch(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"www.amazon.com", NameAmazon},
		{"amazon.co.uk", NameAmazon},
		{"WWW.AMAZON.DE", NameAmazon},
		{"www.walmart.com", NameWalmart},
		{"www.bestbuy.com", NameBestBuy},
		{"bestbuy.ca", NameBestBuy},
		{"shop.example.com", NameGeneric},
		{"", NameGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, Dispatch(tt.host).Name)
		})
	}
}

func TestDispatchURL(t *testing.T) {
	assert.Equal(t, NameAmazon, DispatchURL("https://www.amazon.co.uk/product-reviews/B000").Name)
	assert.Equal(t, NameGeneric, DispatchURL("https://shop.example.com/p/1?ref=amazon").Name)
	assert.Equal(t, NameGeneric, DispatchURL("://bad").Name)
}

func TestDispatchReturnsFreshStrategy(t *testing.T) {
	a := Dispatch("amazon.com")
	a.Containers = nil

	assert.NotEmpty(t, Dispatch("amazon.com").Containers)
}
