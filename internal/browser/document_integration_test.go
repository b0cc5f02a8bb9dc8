package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const integrationPage = `<html><head><title>Acme Kettle</title></head><body>
<div class="review"><span class="rating" data-empty="">4</span><p>Boils fast</p></div>
<div style="height: 5000px"></div>
<button class="load-more" onclick="document.body.insertAdjacentHTML('beforeend', '<div class=review><p>Loaded</p></div>')">Load More</button>
</body></html>`

func TestPageDocument(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, integrationPage)
	}))
	defer srv.Close()

	b, err := New(DefaultOptions(), discardLogger())
	require.NoError(t, err)
	defer b.Close()

	page, err := b.Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer page.Close()

	_, blocked, err := page.Blocked()
	require.NoError(t, err)
	assert.False(t, blocked)

	node, err := page.QuerySelector(".review .rating")
	require.NoError(t, err)
	require.NotNil(t, node)

	v, ok, err := node.Attribute("data-empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok, err = node.Attribute("aria-label")
	require.NoError(t, err)
	assert.False(t, ok)

	visible, err := page.Visible(".load-more")
	require.NoError(t, err)
	assert.False(t, visible)

	require.NoError(t, page.ScrollIntoView(".load-more"))
	visible, err = page.Visible(".load-more")
	require.NoError(t, err)
	assert.True(t, visible)

	require.NoError(t, page.Click(".load-more"))
	reviews, err := page.QuerySelectorAll(".review")
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	tab, err := page.QuerySelector(`button:has-text("Load More")`)
	require.NoError(t, err)
	assert.NotNil(t, tab)
}
