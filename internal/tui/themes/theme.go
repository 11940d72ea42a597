// Package themes holds the color schemes of the payment browser.
package themes

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors a theme is derived from.
type Palette struct {
	Accent    lipgloss.Color
	Heading   lipgloss.Color
	Text      lipgloss.Color
	OnAccent  lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
	Positive  lipgloss.Color
	Negative  lipgloss.Color
	Attention lipgloss.Color
	Neutral   lipgloss.Color
}

// Theme is the rendered styles of the browser.
type Theme struct {
	Title         lipgloss.Style
	DateHeader    lipgloss.Style
	Selected      lipgloss.Style
	Toast         lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusPending lipgloss.Style
	BorderedBox   lipgloss.Style
	Muted         lipgloss.Color
}

// New derives a theme from p.
func New(p Palette) Theme {
	status := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}

	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),
		DateHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Heading),
		Selected: lipgloss.NewStyle().
			Background(p.Accent).
			Foreground(p.OnAccent).
			Bold(true),
		Toast:         lipgloss.NewStyle().Padding(0, 1),
		StatusInfo:    status(p.Neutral),
		StatusSuccess: status(p.Positive),
		StatusWarning: status(p.Attention),
		StatusError:   status(p.Negative),
		StatusPending: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),
		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(1, 2),
		Muted: p.Muted,
	}
}

var palettes = map[string]Palette{
	"default": {
		Accent:    "#7c3aed",
		Heading:   "#a78bfa",
		Text:      "#fafafa",
		OnAccent:  "#fafafa",
		Muted:     "#737373",
		Border:    "#404040",
		Positive:  "#10b981",
		Negative:  "#ef4444",
		Attention: "#f59e0b",
		Neutral:   "#3b82f6",
	},
	"catppuccin-mocha": {
		Accent:    "#cba6f7",
		Heading:   "#f5c2e7",
		Text:      "#cdd6f4",
		OnAccent:  "#1e1e2e",
		Muted:     "#6c7086",
		Border:    "#45475a",
		Positive:  "#a6e3a1",
		Negative:  "#f38ba8",
		Attention: "#f9e2af",
		Neutral:   "#89dceb",
	},
	"light": {
		Accent:    "#6d28d9",
		Heading:   "#5b21b6",
		Text:      "#171717",
		OnAccent:  "#ffffff",
		Muted:     "#525252",
		Border:    "#d4d4d4",
		Positive:  "#047857",
		Negative:  "#b91c1c",
		Attention: "#b45309",
		Neutral:   "#1d4ed8",
	},
}

// Default is the theme used when none is configured.
var Default = New(palettes["default"])

// Names returns the selectable theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named theme.
func Lookup(name string) (Theme, bool) {
	p, ok := palettes[name]
	if !ok {
		return Theme{}, false
	}
	return New(p), true
}

// GetTheme returns the named theme, falling back to Default.
func GetTheme(name string) Theme {
	if theme, ok := Lookup(name); ok {
		return theme
	}
	return Default
}
