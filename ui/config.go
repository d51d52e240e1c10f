package ui

import "time"

// Config contains TUI-specific configuration.
type Config struct {
	Language    string // Voice language prefix
	Layout      string // "split" or "toggle"
	Text        string // Initial text
	EnableMouse bool
	InputTTY    bool // Read keys from the terminal, stdin was consumed
	ListTimeout time.Duration

	HighContrast bool   `env:"READALOUD_HIGH_CONTRAST"`
	GlamourStyle string `env:"GLAMOUR_STYLE" envDefault:"auto"`
	NoColor      bool   `env:"NO_COLOR"`
}
