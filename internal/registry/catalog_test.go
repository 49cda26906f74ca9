package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	reelerrors "github.com/tessro/reel/internal/errors"
)

func TestDefaultCatalog(t *testing.T) {
	authors := DefaultCatalog()
	require.Len(t, authors, 4)

	rebecca := authors[3]
	assert.Equal(t, "rebecca", rebecca.ID)
	assert.Equal(t, "rebecca", rebecca.PhotoName)
	require.Len(t, rebecca.Stories, 3)
	assert.Equal(t, "rebecca-1", rebecca.Stories[0].ID)
	assert.Equal(t, "laos", rebecca.Stories[2].ImageName)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	content := `
[[authors]]
name = "Jean Luc"
stories = ["paris", "lyon"]

[[authors]]
id = "mo"
name = "Mona"
photo = "mona.png"
stories = []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	authors, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, authors, 2)

	assert.Equal(t, "jean-luc", authors[0].ID)
	assert.Equal(t, "jean-luc-2", authors[0].Stories[1].ID)
	assert.Equal(t, "mo", authors[1].ID)
	assert.Equal(t, "mona.png", authors[1].PhotoName)
	assert.Empty(t, authors[1].Stories)
}

func TestCatalogBuildErrors(t *testing.T) {
	_, err := Catalog{}.Build()
	assert.True(t, errors.Is(err, reelerrors.ErrNoAuthors))

	_, err = Catalog{Authors: []CatalogAuthor{{Name: "  "}}}.Build()
	assert.Error(t, err)

	_, err = Catalog{Authors: []CatalogAuthor{{Name: "Ann"}, {Name: "ann"}}}.Build()
	assert.ErrorContains(t, err, "duplicate id")
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "jean-luc", slug("Jean  Luc!"))
	assert.Equal(t, "ann", slug("--Ann--"))
}
