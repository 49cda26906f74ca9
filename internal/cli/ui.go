package cli

import (
	"github.com/spf13/cobra"
	"github.com/tessro/reel/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch the story feed",
	Long: `Launch the full-screen story feed.

The feed lists authors with unseen stories first. Opening an author plays
their stories one after another until the last one ends or you close it.

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Filter authors
  j/k          Move selection
  Enter        Watch stories
  h/l          Previous/next story
  Space        Pause/Resume
  x, Esc       Close stories`,
	RunE: runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer s.Close()

	return tui.Run(s.registry, policy(), cfg.TUI.Theme, s.log)
}
