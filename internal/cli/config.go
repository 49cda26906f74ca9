package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/tessro/reel/internal/config"
	reelerrors "github.com/tessro/reel/internal/errors"
	"github.com/tessro/reel/internal/playback"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing reel configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the configuration in effect, after defaults and REEL_*
environment overrides, along with the story length it produces.`,
	RunE: runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor. The file is
checked when the editor exits, so mistakes are reported right away.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a new configuration file with default values: 0.02 progress
per 200ms tick (10s per story), seen markers in a JSON file, and the
built-in author catalog.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  playback.step           Progress added per tick (0-1]
  playback.tick_interval  Milliseconds between ticks
  store.driver            Seen store (file/sqlite/memory)
  store.path              Seen store location
  catalog.path            Author catalog TOML file
  tail.emoji              Emoji in play output (true/false)
  tail.timestamp          Timestamps in play output (true/false)
  tail.format             Custom play output template
  tui.theme               Color theme (auto/dark/light)
  log.level               Log level (debug/info/warn/error)
  log.file                Log file path

Examples:
  reel config set playback.step 0.05
  reel config set store.driver sqlite
  reel config set store.path ~/.local/share/reel/seen.db`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	return showConfig(os.Stdout, cfg, getConfigPath(), JSONOutput())
}

// showConfig prints c with where it came from and the pacing it implies.
func showConfig(w io.Writer, c *config.Config, path string, asJSON bool) error {
	source := path
	if _, err := os.Stat(path); err != nil {
		source = ""
	}
	p := playback.Policy{Step: c.Playback.Step, Interval: c.Playback.Interval()}

	if asJSON {
		return json.NewEncoder(w).Encode(map[string]interface{}{
			"source":        source,
			"story_seconds": p.SegmentDuration().Seconds(),
			"config":        c,
		})
	}

	if source == "" {
		_, _ = fmt.Fprintln(w, "# No config file found; showing defaults")
	} else {
		_, _ = fmt.Fprintf(w, "# Loaded from %s\n", source)
	}
	_, _ = fmt.Fprintf(w, "# Each story lasts %s (%d ticks)\n\n", p.SegmentDuration(), p.TicksPerSegment())

	encoder := toml.NewEncoder(w)
	encoder.Indent = "  "
	return encoder.Encode(c)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'reel config init' first", configPath)
	}

	editor := findEditor()
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return err
	}

	if err := checkConfigFile(configPath); err != nil {
		return reelerrors.WithSuggestion(err, "Run 'reel config edit' again to fix it")
	}
	fmt.Println("Configuration OK")
	return nil
}

func findEditor() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if editor := os.Getenv(env); editor != "" {
			return editor
		}
	}
	for _, e := range []string{"nano", "vim", "vi", "notepad"} {
		if _, err := exec.LookPath(e); err == nil {
			return e
		}
	}
	return ""
}

// checkConfigFile loads and validates the file at path.
func checkConfigFile(path string) error {
	c, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("%w: %v", reelerrors.ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", reelerrors.ErrInvalidConfig, err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := writeConfigFile(f, config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	} else {
		fmt.Printf("Created config file: %s\n", configPath)
		fmt.Println("\nNext steps:")
		fmt.Println("  1. Point catalog.path at your own authors, or keep the built-in ones")
		fmt.Println("  2. Run 'reel ui' to start watching")
	}

	return nil
}

// configHeader documents each section at the top of written config files.
const configHeader = `# Reel Configuration
# https://github.com/tessro/reel
#
# [playback]  step: progress per tick (0-1], tick_interval: milliseconds
# [store]     driver: file, sqlite, or memory; path: where markers live
# [catalog]   path: TOML file of [[authors]] with name, photo, stories
# [tail]      emoji, timestamp, format: 'reel play' output
# [tui]       theme: auto, dark, or light
# [log]       level: debug, info, warn, or error; file: log destination

`

// writeConfigFile writes v as TOML under the documented header.
func writeConfigFile(w io.Writer, v interface{}) error {
	if _, err := io.WriteString(w, configHeader); err != nil {
		return err
	}
	encoder := toml.NewEncoder(w)
	encoder.Indent = "  "
	return encoder.Encode(v)
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".reelrc"
	}

	return filepath.Join(home, ".reelrc")
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath := getConfigPath()

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'reel config init' first", configPath)
	}

	// Read the current config file as raw TOML
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Parse and update based on key
	var rawConfig map[string]interface{}
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Parse the key (e.g., "playback.step" -> ["playback", "step"])
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format. Use 'section.key' (e.g., playback.step)")
	}

	section, field := parts[0], parts[1]

	// Get or create the section
	sectionMap, ok := rawConfig[section].(map[string]interface{})
	if !ok {
		sectionMap = make(map[string]interface{})
		rawConfig[section] = sectionMap
	}

	typedValue, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}

	sectionMap[field] = typedValue

	// Write back to file
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := writeConfigFile(f, rawConfig); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	} else {
		fmt.Printf("Set %s = %s\n", key, value)
	}

	return nil
}

// parseConfigValue converts a command-line value to the type the key holds.
func parseConfigValue(key, value string) (interface{}, error) {
	switch key {
	case "playback.tick_interval":
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return i, nil
	case "playback.step":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value must be a number for %s", key)
		}
		return f, nil
	case "tail.emoji", "tail.timestamp":
		return value == "true" || value == "1" || value == "yes", nil
	case "store.driver", "store.path", "catalog.path", "tail.format", "tui.theme", "log.level", "log.file":
		return value, nil
	default:
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
}
