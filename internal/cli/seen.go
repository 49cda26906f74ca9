package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	reelerrors "github.com/tessro/reel/internal/errors"
	"github.com/tessro/reel/internal/registry"
)

var seenCmd = &cobra.Command{
	Use:   "seen",
	Short: "Manage seen markers",
	Long:  `Commands for viewing and resetting which authors you have watched.`,
}

var seenResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Mark every author unseen",
	Args:  cobra.NoArgs,
	RunE:  runSeenReset,
}

var seenMarkCmd = &cobra.Command{
	Use:   "mark <author>...",
	Short: "Mark authors seen without watching",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSeenMark,
}

func init() {
	seenCmd.AddCommand(seenResetCmd)
	seenCmd.AddCommand(seenMarkCmd)
	rootCmd.AddCommand(seenCmd)
}

func runSeenReset(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.registry.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset seen markers: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "reset"})
	}
	fmt.Println("All authors marked unseen")
	return nil
}

func runSeenMark(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	result := markSeen(cmd.Context(), s.registry, args)

	if JSONOutput() {
		if err := json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"status":  "seen",
			"authors": result.Data,
		}); err != nil {
			return err
		}
	} else {
		for _, name := range result.Data {
			fmt.Printf("%s %s marked seen\n", StatusIcon(false), name)
		}
	}

	if result.HasErrors() {
		return errors.New(result.ErrorSummary())
	}
	return nil
}

// markSeen marks each named author, carrying on past lookups that fail.
func markSeen(ctx context.Context, reg *registry.Registry, names []string) *reelerrors.PartialResult[[]string] {
	result := &reelerrors.PartialResult[[]string]{}
	for _, name := range names {
		author, err := reg.Find(name)
		if err != nil {
			result.AddError(err)
			continue
		}
		if err := reg.MarkSeenContext(ctx, author.ID); err != nil {
			result.AddError(fmt.Errorf("failed to mark %s seen: %w", author.Name, err))
			continue
		}
		result.Data = append(result.Data, author.Name)
	}
	return result
}
