package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tessro/reel/internal/config"
	"github.com/tessro/reel/internal/core"
	reelerrors "github.com/tessro/reel/internal/errors"
	"github.com/tessro/reel/internal/logger"
	"github.com/tessro/reel/internal/playback"
	"github.com/tessro/reel/internal/registry"
	"github.com/tessro/reel/internal/registry/sqlite"
)

var (
	cfgFile   string
	jsonOut   bool
	verbose   bool
	ephemeral bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reel",
	Short: "Watch short image stories from the command line",
	Long: `Reel plays authors' image stories one after another, filling a progress
bar per story and remembering whose stories you have already seen.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.reelrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep seen markers in memory only")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", reelerrors.ErrInvalidConfig, err)
	}

	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, reelerrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}

// newLogger builds the logger for a command. Without a log file, output
// goes to stderr, or nowhere when stderr belongs to a full-screen UI.
func newLogger(quiet bool) (logger.Logger, func(), error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case quiet:
		return logger.Nop(), closeFn, nil
	}

	return logger.NewLogger(level, w), closeFn, nil
}

// session bundles what story commands share.
type session struct {
	log      logger.Logger
	registry *registry.Registry
	closers  []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openSession loads the catalog, opens the seen store, and builds the
// registry. Callers must Close the session.
func openSession(ctx context.Context, quiet bool) (*session, error) {
	log, closeLog, err := newLogger(quiet)
	if err != nil {
		return nil, err
	}
	s := &session{log: log, closers: []func(){closeLog}}

	authors, err := loadAuthors()
	if err != nil {
		s.Close()
		return nil, err
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, closeStore)

	reg, err := registry.New(ctx, authors, store, registry.WithLogger(log))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.registry = reg
	log.Debugf("loaded %d authors (store: %s)", reg.Len(), storeDriver())
	return s, nil
}

func loadAuthors() ([]core.Author, error) {
	if cfg.Catalog.Path == "" {
		return registry.DefaultCatalog(), nil
	}
	authors, err := registry.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return authors, nil
}

func storeDriver() string {
	if ephemeral {
		return "memory"
	}
	if cfg.Store.Driver == "" {
		return "file"
	}
	return cfg.Store.Driver
}

func openStore(ctx context.Context) (registry.Store, func(), error) {
	noop := func() {}

	switch storeDriver() {
	case "memory":
		return registry.NewMemoryStore(), noop, nil

	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", reelerrors.ErrStoreUnavailable, err)
		}
		return store, func() { _ = store.Close() }, nil

	default:
		store, err := registry.NewFileStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", reelerrors.ErrStoreUnavailable, err)
		}
		return store, noop, nil
	}
}

// policy returns the configured pacing.
func policy() playback.Policy {
	return playback.Policy{
		Step:     cfg.Playback.Step,
		Interval: cfg.Playback.Interval(),
	}
}
