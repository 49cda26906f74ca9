package registry

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tessro/reel/internal/core"
	reelerrors "github.com/tessro/reel/internal/errors"
)

// Catalog is the on-disk author list.
//
//	[[authors]]
//	name = "Clara"
//	photo = "clara"
//	stories = ["cambodge2", "vietnam"]
type Catalog struct {
	Authors []CatalogAuthor `toml:"authors"`
}

// CatalogAuthor is one author entry in a catalog file.
type CatalogAuthor struct {
	ID      string   `toml:"id"`
	Name    string   `toml:"name"`
	Photo   string   `toml:"photo"`
	Stories []string `toml:"stories"`
}

// DefaultCatalog returns the built-in demo authors.
func DefaultCatalog() []core.Author {
	c := Catalog{Authors: []CatalogAuthor{
		{Name: "Pierre", Photo: "pierre", Stories: []string{"thailand"}},
		{Name: "Paul", Photo: "paul", Stories: []string{"cambodge"}},
		{Name: "Clara", Photo: "clara", Stories: []string{"cambodge2", "vietnam"}},
		{Name: "Rebecca", Photo: "rebecca", Stories: []string{"bali", "bali2", "laos"}},
	}}
	authors, _ := c.Build()
	return authors
}

// LoadCatalog reads a TOML catalog file.
func LoadCatalog(path string) ([]core.Author, error) {
	var c Catalog
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return c.Build()
}

// Build converts catalog entries to authors, deriving missing IDs from
// names. Story IDs are "<author>-<n>", counting from 1.
func (c Catalog) Build() ([]core.Author, error) {
	if len(c.Authors) == 0 {
		return nil, reelerrors.ErrNoAuthors
	}

	authors := make([]core.Author, 0, len(c.Authors))
	ids := make(map[string]bool, len(c.Authors))
	for i, ca := range c.Authors {
		name := strings.TrimSpace(ca.Name)
		if name == "" {
			return nil, fmt.Errorf("author %d: name is required", i+1)
		}
		id := strings.TrimSpace(ca.ID)
		if id == "" {
			id = slug(name)
		}
		if ids[id] {
			return nil, fmt.Errorf("author %d: duplicate id %q", i+1, id)
		}
		ids[id] = true

		photo := ca.Photo
		if photo == "" {
			photo = id
		}

		stories := make([]core.Story, len(ca.Stories))
		for j, img := range ca.Stories {
			stories[j] = core.Story{
				ID:        fmt.Sprintf("%s-%d", id, j+1),
				ImageName: img,
			}
		}

		authors = append(authors, core.Author{
			ID:        id,
			Name:      name,
			PhotoName: photo,
			Stories:   stories,
		})
	}
	return authors, nil
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
