package extract

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/review-scraper/internal/pacing"
)

var testLoadMore = []string{".load-more", ".show-more"}

func newTestExpander(p pacing.Pauser) (*Expander, *captureHandler) {
	logger, h := newCaptureLogger()
	return NewExpander(p, logger).WithSelectors(testLoadMore), h
}

func TestExpandStopsAtMaxRounds(t *testing.T) {
	doc := newScriptedDoc(t, `<button class="load-more">Load more</button>`)
	doc.visible[".load-more"] = true
	p := &recordingPauser{}
	e, _ := newTestExpander(p)

	exp, err := e.Expand(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, Expansion{Rounds: DefaultMaxRounds, Clicks: DefaultMaxRounds}, exp)
	assert.True(t, exp.Expanded())
	assert.Len(t, doc.clicks, DefaultMaxRounds)
	assert.Len(t, doc.scrolls, DefaultMaxRounds)

	var want []pacing.Kind
	for i := 0; i < DefaultMaxRounds; i++ {
		want = append(want, pacing.Settle, pacing.Load)
	}
	assert.Equal(t, want, p.kinds)
}

func TestExpandStopsWhenControlDisappears(t *testing.T) {
	doc := newScriptedDoc(t, `<button class="load-more">Load more</button>`)
	doc.visible[".load-more"] = true
	doc.hideAfter[".load-more"] = 2
	e, _ := newTestExpander(&recordingPauser{})

	exp, err := e.Expand(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, Expansion{Rounds: 3, Clicks: 2}, exp)
}

func TestExpandNothingVisible(t *testing.T) {
	doc := newScriptedDoc(t, `<button class="load-more">Load more</button>`)
	p := &recordingPauser{}
	e, _ := newTestExpander(p)

	exp, err := e.Expand(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, Expansion{Rounds: 1}, exp)
	assert.False(t, exp.Expanded())
	assert.Empty(t, doc.clicks)
	assert.Empty(t, p.kinds)
}

func TestExpandFallsThroughFailedClick(t *testing.T) {
	doc := newScriptedDoc(t, `<button class="load-more"></button><button class="show-more"></button>`)
	doc.visible[".load-more"] = true
	doc.visible[".show-more"] = true
	doc.clickErr[".load-more"] = errors.New("element detached")
	doc.hideAfter[".show-more"] = 1
	e, h := newTestExpander(&recordingPauser{})

	exp, err := e.Expand(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, Expansion{Rounds: 2, Clicks: 1}, exp)
	assert.Equal(t, []string{".show-more"}, doc.clicks)
	assert.Contains(t, h.messages(slog.LevelWarn), "could not click load more control")
}

func TestExpandAllClicksFail(t *testing.T) {
	doc := newScriptedDoc(t, `<button class="load-more"></button>`)
	doc.visible[".load-more"] = true
	doc.clickErr[".load-more"] = errors.New("intercepted")
	e, _ := newTestExpander(&recordingPauser{})

	exp, err := e.Expand(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, Expansion{Rounds: 1}, exp)
}

func TestExpandCancelled(t *testing.T) {
	doc := newScriptedDoc(t, `<button class="load-more"></button>`)
	doc.visible[".load-more"] = true
	e, _ := newTestExpander(&recordingPauser{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Expand(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, doc.clicks)
}

func TestExpandDefaultSelectorsOnStaticDocument(t *testing.T) {
	doc := parse(t, `<button class="load-more-button">Load More</button>`)
	logger, _ := newCaptureLogger()

	exp, err := NewExpander(pacing.Nop{}, logger).Expand(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, Expansion{Rounds: 1}, exp)
}
