package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/review-scraper/internal/dom"
)

// spyNode records which selectors were queried.
type spyNode struct {
	dom.Node
	queried []string
}

func (s *spyNode) QuerySelector(selector string) (dom.Node, error) {
	s.queried = append(s.queried, selector)
	return s.Node.QuerySelector(selector)
}

func (s *spyNode) QuerySelectorAll(selector string) ([]dom.Node, error) {
	s.queried = append(s.queried, selector)
	return s.Node.QuerySelectorAll(selector)
}

const cascadeFixture = `<div class="root">
	<span class="empty"></span>
	<span class="full">hello</span>
	<p>one</p><p>two</p>
</div>`

func TestFirstMatchStructuralMatchWins(t *testing.T) {
	spy := &spyNode{Node: firstNode(t, cascadeFixture, ".root")}

	match, selector, err := FirstMatch(spy, Cascade{".missing", ".empty", ".full", ".other"})
	require.NoError(t, err)
	require.NotNil(t, match)

	text, _ := match.Text()
	assert.Equal(t, "", text)
	assert.Equal(t, ".empty", selector)
	assert.Equal(t, []string{".missing", ".empty"}, spy.queried)
}

func TestFirstMatchNoMatch(t *testing.T) {
	root := firstNode(t, cascadeFixture, ".root")

	match, selector, err := FirstMatch(root, Cascade{".a", ".b"})
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Empty(t, selector)
}

func TestFirstMatchEmptyCascade(t *testing.T) {
	root := firstNode(t, cascadeFixture, ".root")

	match, _, err := FirstMatch(root, nil)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFirstMatchInvalidSelector(t *testing.T) {
	root := firstNode(t, cascadeFixture, ".root")

	_, selector, err := FirstMatch(root, Cascade{"p:has-text(\"x\")"})
	assert.ErrorIs(t, err, dom.ErrInvalidSelector)
	assert.Equal(t, "p:has-text(\"x\")", selector)
}

func TestFirstMatchAll(t *testing.T) {
	spy := &spyNode{Node: firstNode(t, cascadeFixture, ".root")}

	matches, selector, err := FirstMatchAll(spy, Cascade{".missing", "p", ".full"})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.Equal(t, "p", selector)
	assert.Equal(t, []string{".missing", "p"}, spy.queried)
}
