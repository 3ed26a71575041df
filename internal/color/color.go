// Package color provides color detection and theming for CLI output.
package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Enabled reports whether colored output should be produced.
//
// Color is turned off when any of:
//   - noColorFlag is true (--no-color)
//   - NO_COLOR env is set, any value (https://no-color.org)
//   - CLICOLOR=0
//   - TERM=dumb
func Enabled(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	if os.Getenv("CLICOLOR") == "0" {
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}

	return true
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

// Theme holds lipgloss styles for table and summary output.
type Theme struct {
	Pass   lipgloss.Style
	Fail   lipgloss.Style
	Warn   lipgloss.Style
	Skip   lipgloss.Style
	Header lipgloss.Style
	Muted  lipgloss.Style
}

// NewTheme creates a Theme. When color is false, every style is the
// zero style and renders text unchanged.
func NewTheme(color bool) Theme {
	if !color {
		return Theme{}
	}

	return Theme{
		Pass:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Skip:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Header: lipgloss.NewStyle().Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
