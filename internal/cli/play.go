package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tessro/reel/internal/core"
	reelerrors "github.com/tessro/reel/internal/errors"
	"github.com/tessro/reel/internal/logger"
	"github.com/tessro/reel/internal/playback"
	"github.com/tessro/reel/internal/registry"
	"github.com/tessro/reel/internal/tail"
	"github.com/tessro/reel/internal/wizard"
)

var (
	playFrom      int
	playStep      float64
	playInterval  time.Duration
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
)

var playCmd = &cobra.Command{
	Use:   "play [author]",
	Short: "Watch an author's stories in the terminal",
	Long: `Play an author's stories and print each change as it happens.
Without arguments, shows a picker when running in a terminal.

Press Ctrl+C to close the stories early.

Examples:
  reel play clara              # Watch Clara's stories
  reel play rebecca --from 2   # Start at Rebecca's third story
  reel play paul --step 0.1 --interval 100ms
  reel play clara --format '{{.Time}} {{.Author}} {{.Position}}/{{.Total}}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&playFrom, "from", 0, "story index to start at")
	playCmd.Flags().Float64Var(&playStep, "step", 0, "progress added per tick (default from config)")
	playCmd.Flags().DurationVar(&playInterval, "interval", 0, "time between ticks (default from config)")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps")
	playCmd.Flags().StringVarP(&playFormat, "format", "f", "", "custom format template")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if playFrom < 0 {
		return fmt.Errorf("%w: --from must not be negative", reelerrors.ErrIndexOutOfRange)
	}

	p := policy()
	if cmd.Flags().Changed("step") {
		p.Step = playStep
	}
	if cmd.Flags().Changed("interval") {
		p.Interval = playInterval
	}
	if err := p.Validate(); err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	author, err := resolveAuthor(s.registry, args)
	if err != nil {
		return err
	}
	if author == nil {
		return nil
	}

	format := cfg.Tail.Format
	if playFormat != "" {
		format = playFormat
	}
	formatter := tail.NewFormatter(
		tail.WithEmoji(cfg.Tail.Emoji && !playNoEmoji),
		tail.WithTimestamp(cfg.Tail.Timestamp || playTimestamp),
		tail.WithTemplate(format),
	)

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watch(ctx, *author, s.registry, watchOptions{
		Policy:    p,
		From:      playFrom,
		Scheduler: playback.TimerScheduler{},
		Formatter: formatter,
		JSON:      JSONOutput(),
		Log:       s.log,
	}, os.Stdout)
}

// resolveAuthor finds the named author, or asks for one interactively.
// It returns nil when the picker was cancelled.
func resolveAuthor(reg *registry.Registry, args []string) (*core.Author, error) {
	if !wizard.NeedsAuthor(args) {
		a, err := reg.Find(args[0])
		if err != nil {
			return nil, err
		}
		return &a, nil
	}

	interactive := wizard.NewInteractive()
	if !interactive.CanInteract() {
		return nil, reelerrors.ErrNotInteractive
	}
	interactive.SetAuthors(reg.Authors())

	entry, err := interactive.PromptAuthor()
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	return &entry.Author, nil
}

type watchOptions struct {
	Policy    playback.Policy
	From      int
	Scheduler playback.Scheduler
	Formatter *tail.Formatter
	JSON      bool
	Log       logger.Logger
}

// watch plays author's stories until the timeline ends or ctx is done,
// writing one line per event to w. The session is always closed, so the
// author is marked seen either way.
func watch(ctx context.Context, author core.Author, reg *registry.Registry, o watchOptions, w io.Writer) error {
	rec := tail.NewRecorder(author, 64)

	ended := make(chan struct{})
	var endOnce sync.Once

	engine := playback.New(author.Timeline(), author.ID, playback.Options{
		Policy: o.Policy,
		Observer: playback.ObserverFuncs{
			SegmentChanged: rec.OnSegmentChanged,
			TimelineEnded: func() {
				rec.OnTimelineEnded()
				endOnce.Do(func() { close(ended) })
			},
			Closed: func() {
				rec.OnClosed()
				rec.Close()
			},
		},
		MarkSeen:  reg.MarkSeen,
		Scheduler: o.Scheduler,
		Logger:    o.Log,
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-ended:
		case <-done:
		}
		engine.Close()
	}()

	if author.Timeline().Valid(o.From) {
		rec.Started(o.From)
	}
	startErr := engine.Start(o.From)
	if startErr != nil && !engine.IsEnded() {
		o.Log.Warnf("start %s at %d: %v", author.ID, o.From, startErr)
		startErr = nil
	}

	enc := json.NewEncoder(w)
	for e := range rec.Events() {
		var err error
		if o.JSON {
			err = enc.Encode(toEventJSON(e))
		} else {
			_, err = fmt.Fprintln(w, o.Formatter.Format(e))
		}
		if err != nil {
			// Stop ticking and mark seen while the store is still open
			engine.Close()
			return err
		}
	}

	return startErr
}

type eventJSON struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
	Index     *int      `json:"index,omitempty"`
	Image     string    `json:"image,omitempty"`
}

func toEventJSON(e tail.Event) eventJSON {
	out := eventJSON{
		Type:      e.Type.String(),
		Timestamp: e.Timestamp,
		Author:    e.Author.ID,
	}
	if e.Story != nil {
		i := e.Index
		out.Index = &i
		out.Image = e.Story.ImageName
	}
	return out
}
