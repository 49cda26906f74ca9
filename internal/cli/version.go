package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Set via ldflags at build time
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Show the reel version. With --verbose, also show build details and
where stories and seen markers come from.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(os.Stdout, JSONOutput(), Verbose())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionInfo describes the build and the story sources it will use.
func versionInfo() map[string]string {
	info := map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
	}
	if cfg != nil {
		info["catalog"] = catalogSource()
		info["store"] = storeDriver()
		info["pacing"] = policy().SegmentDuration().String() + " per story"
	}
	return info
}

func catalogSource() string {
	if cfg.Catalog.Path == "" {
		return "built-in"
	}
	return cfg.Catalog.Path
}

func printVersion(w io.Writer, asJSON, details bool) error {
	info := versionInfo()

	if asJSON {
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	_, _ = fmt.Fprintf(w, "reel %s\n", Version)
	if details {
		_, _ = fmt.Fprintf(w, "  commit:     %s\n", Commit)
		_, _ = fmt.Fprintf(w, "  built:      %s\n", BuildDate)
		_, _ = fmt.Fprintf(w, "  go version: %s\n", info["go_version"])
		_, _ = fmt.Fprintf(w, "  platform:   %s/%s\n", info["os"], info["arch"])
		if cfg != nil {
			_, _ = fmt.Fprintf(w, "  catalog:    %s\n", info["catalog"])
			_, _ = fmt.Fprintf(w, "  store:      %s\n", info["store"])
			_, _ = fmt.Fprintf(w, "  pacing:     %s\n", info["pacing"])
		}
	}
	return nil
}
