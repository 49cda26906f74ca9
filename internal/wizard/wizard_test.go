package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessro/reel/internal/core"
	"github.com/tessro/reel/internal/registry"
)

func entry(name string, stories int, seen bool) registry.Entry {
	return registry.Entry{
		Author: core.Author{ID: name, Name: name, Stories: make([]core.Story, stories)},
		Marker: registry.Marker{AuthorID: name, Seen: seen},
	}
}

func TestAuthorLabel(t *testing.T) {
	assert.Equal(t, "◉ Paul (1 story)", AuthorLabel(entry("Paul", 1, false)))
	assert.Equal(t, "○ Rebecca (3 stories)", AuthorLabel(entry("Rebecca", 3, true)))
}

func TestNeedsAuthor(t *testing.T) {
	assert.True(t, NeedsAuthor(nil))
	assert.False(t, NeedsAuthor([]string{"clara"}))
}

func TestPromptAuthorRequiresTerminal(t *testing.T) {
	i := NewInteractive()
	i.isTTY = func() bool { return false }
	i.SetAuthors([]registry.Entry{entry("Paul", 1, false)})

	got, err := i.PromptAuthor()
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestPromptAuthorUsesPicker(t *testing.T) {
	authors := []registry.Entry{entry("Paul", 1, false), entry("Clara", 2, false)}
	i := NewInteractive()
	i.isTTY = func() bool { return true }
	i.pick = func(es []registry.Entry) (*registry.Entry, error) { return &es[1], nil }
	i.SetAuthors(authors)

	got, err := i.PromptAuthor()
	require.NoError(t, err)
	assert.Equal(t, "Clara", got.Author.Name)

	i.SetEnabled(false)
	got, err = i.PromptAuthor()
	assert.NoError(t, err)
	assert.Nil(t, got)
}
