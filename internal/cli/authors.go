package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tessro/reel/internal/registry"
)

var authorsCmd = &cobra.Command{
	Use:     "authors",
	Aliases: []string{"ls"},
	Short:   "List authors with stories",
	Long:    `List every author in the catalog, unseen first.`,
	RunE:    runAuthors,
}

func init() {
	rootCmd.AddCommand(authorsCmd)
}

type authorJSON struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Stories int        `json:"stories"`
	Seen    bool       `json:"seen"`
	SeenAt  *time.Time `json:"seen_at,omitempty"`
}

func runAuthors(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	entries := s.registry.Authors()

	return printAuthors(os.Stdout, entries, JSONOutput())
}

func printAuthors(w io.Writer, entries []registry.Entry, asJSON bool) error {
	if asJSON {
		out := make([]authorJSON, len(entries))
		for i, e := range entries {
			out[i] = toAuthorJSON(e)
		}
		return json.NewEncoder(w).Encode(out)
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No authors found")
		return err
	}

	table := NewTableWriter(w, "", "NAME", "STORIES", "SEEN")
	for _, e := range entries {
		table.Row(
			StatusIcon(!e.Marker.Seen),
			TruncateString(e.Author.Name, 32),
			fmt.Sprintf("%d", len(e.Author.Stories)),
			seenLabel(e.Marker),
		)
	}
	table.Flush()
	return nil
}

func toAuthorJSON(e registry.Entry) authorJSON {
	a := authorJSON{
		ID:      e.Author.ID,
		Name:    e.Author.Name,
		Stories: len(e.Author.Stories),
		Seen:    e.Marker.Seen,
	}
	if e.Marker.Seen && !e.Marker.SeenAt.IsZero() {
		t := e.Marker.SeenAt
		a.SeenAt = &t
	}
	return a
}

func seenLabel(m registry.Marker) string {
	switch {
	case !m.Seen:
		return "-"
	case m.SeenAt.IsZero():
		return "seen"
	default:
		return "seen " + humanize.Time(m.SeenAt)
	}
}
