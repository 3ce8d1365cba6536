// Package styles defines the two procsweep color themes as lipgloss
// style sets consumed by the views.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the complete style palette for one look.
type Theme struct {
	Name string

	Title     lipgloss.Style
	Header    lipgloss.Style
	Row       lipgloss.Style
	Selected  lipgloss.Style
	Marked    lipgloss.Style
	Highlight lipgloss.Style
	Branch    lipgloss.Style
	Dim       lipgloss.Style

	StatusInfo  lipgloss.Style
	StatusWarn  lipgloss.Style
	StatusError lipgloss.Style

	RiskElevated lipgloss.Style
	RiskCritical lipgloss.Style

	Overlay lipgloss.Style
	Prompt  lipgloss.Style
}

// Pink is the default playful theme.
func Pink() Theme {
	accent := lipgloss.Color("205")
	soft := lipgloss.Color("218")
	return Theme{
		Name:      "pink",
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(soft).Underline(true),
		Row:       lipgloss.NewStyle(),
		Selected:  lipgloss.NewStyle().Background(accent).Foreground(lipgloss.Color("231")).Bold(true),
		Marked:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		Highlight: lipgloss.NewStyle().Foreground(accent).Bold(true).Underline(true),
		Branch:    lipgloss.NewStyle().Foreground(soft),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),

		StatusInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		StatusWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		RiskElevated: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		RiskCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		Overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2),
		Prompt: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2).Bold(true),
	}
}

// Serious is the restrained theme for people who kill processes at work.
func Serious() Theme {
	accent := lipgloss.Color("39")
	return Theme{
		Name:      "serious",
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Header:    lipgloss.NewStyle().Bold(true).Underline(true),
		Row:       lipgloss.NewStyle(),
		Selected:  lipgloss.NewStyle().Background(lipgloss.Color("238")).Bold(true),
		Marked:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		Highlight: lipgloss.NewStyle().Foreground(accent).Underline(true),
		Branch:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),

		StatusInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		StatusWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),

		RiskElevated: lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		RiskCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),

		Overlay: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(accent).
			Padding(1, 2),
		Prompt: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(1, 2).Bold(true),
	}
}

// ForName resolves a theme by its config name, defaulting to pink.
func ForName(name string) Theme {
	if name == "serious" {
		return Serious()
	}
	return Pink()
}
