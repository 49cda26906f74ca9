package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Playback PlaybackConfig `toml:"playback"`
	Store    StoreConfig    `toml:"store"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Tail     TailConfig     `toml:"tail"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
}

// PlaybackConfig holds story pacing.
type PlaybackConfig struct {
	Step         float64 `toml:"step"`
	TickInterval int     `toml:"tick_interval"`
}

// Interval returns TickInterval as a duration.
func (c PlaybackConfig) Interval() time.Duration {
	return time.Duration(c.TickInterval) * time.Millisecond
}

// StoreConfig selects where seen markers are kept.
type StoreConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

// CatalogConfig points at an optional author catalog file.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// TailConfig holds settings for headless playback output.
type TailConfig struct {
	Emoji     bool   `toml:"emoji"`
	Timestamp bool   `toml:"timestamp"`
	Format    string `toml:"format"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
