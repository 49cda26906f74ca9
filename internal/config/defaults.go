package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			Step:         0.02,
			TickInterval: 200,
		},
		Store: StoreConfig{
			Driver: "file",
		},
		Tail: TailConfig{
			Emoji: true,
		},
		TUI: TUIConfig{
			Theme: "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Playback
	if c.Playback.Step == 0 {
		c.Playback.Step = d.Playback.Step
	}
	if c.Playback.TickInterval == 0 {
		c.Playback.TickInterval = d.Playback.TickInterval
	}

	// Store
	if c.Store.Driver == "" {
		c.Store.Driver = d.Store.Driver
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
