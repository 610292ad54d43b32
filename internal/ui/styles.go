// Package ui renders search results and engine statistics for the
// terminal, with a styled mode for TTYs and a plain mode for pipes and
// CI.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
const (
	ColorCyan     = "81"  // Primary accent - scores, headers
	ColorWhite    = "255" // Result titles
	ColorGray     = "245" // Secondary text, sources
	ColorDarkGray = "238" // Separators
	ColorYellow   = "220" // Warnings, degraded results
	ColorGreen    = "114" // Both-source tag
)

// Styles holds the render styles.
type Styles struct {
	Header  lipgloss.Style
	Title   lipgloss.Style
	Score   lipgloss.Style
	Source  lipgloss.Style
	Snippet lipgloss.Style
	Tag     lipgloss.Style
	Warning lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultStyles returns the styled palette for TTY output.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Score:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyan)),
		Source:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Snippet: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Tag:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Title:   lipgloss.NewStyle(),
		Score:   lipgloss.NewStyle(),
		Source:  lipgloss.NewStyle(),
		Snippet: lipgloss.NewStyle(),
		Tag:     lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
}
