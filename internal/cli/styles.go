// Package cli provides styled terminal output and prompts for the spend commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	PrimaryColor = lipgloss.Color("#7C3AED")
	AccentColor  = lipgloss.Color("#A78BFA")
	SuccessColor = lipgloss.Color("#10B981")
	WarningColor = lipgloss.Color("#F59E0B")
	ErrorColor   = lipgloss.Color("#EF4444")
	InfoColor    = lipgloss.Color("#60A5FA")
	SubtleColor  = lipgloss.Color("#737373")
	BorderColor  = lipgloss.Color("#404040")
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// BoxStyle frames the summary and account panels.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	// DateStyle is used for day headers in payment listings.
	DateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	// AmountStyle is used for payment amounts.
	AmountStyle = lipgloss.NewStyle().Bold(true)

	// TableHeaderStyle underlines column headings.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(BorderColor)

	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)

	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	WalletIcon  = "💸"
)

func withIcon(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return withIcon(SuccessStyle, SuccessIcon, message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return withIcon(ErrorStyle, ErrorIcon, message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return withIcon(WarningStyle, WarningIcon, message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return withIcon(InfoStyle, InfoIcon, message)
}

// FormatTitle formats a title with the wallet icon.
func FormatTitle(title string) string {
	return withIcon(TitleStyle, WalletIcon, title)
}

// FormatPrompt formats a prompt label.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + ": ")
}

// RenderBox renders content under a title inside a rounded border.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content,
	))
}
