package wizard

import (
	"os"

	"github.com/tessro/reel/internal/registry"
	"golang.org/x/term"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled bool
	authors []registry.Entry
	isTTY   func() bool
	pick    func([]registry.Entry) (*registry.Entry, error)
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
		isTTY:   IsTerminal,
		pick:    RunAuthorPicker,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// SetAuthors sets the authors offered by the picker.
func (i *Interactive) SetAuthors(authors []registry.Entry) {
	i.authors = authors
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && i.isTTY()
}

// PromptAuthor launches the author picker if interactive mode is available.
// Returns the selected author, or nil if cancelled or not interactive.
func (i *Interactive) PromptAuthor() (*registry.Entry, error) {
	if !i.CanInteract() || len(i.authors) == 0 {
		return nil, nil
	}
	return i.pick(i.authors)
}

// NeedsAuthor returns true if an author argument is required but missing.
func NeedsAuthor(args []string) bool {
	return len(args) == 0
}
