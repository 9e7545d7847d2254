package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme names accepted by SetTheme.
const (
	ThemeClassic = "classic"
	ThemeNeon    = "neon"
	ThemeMono    = "mono"
)

// Theme bundles the styles and border every renderer pulls from.
type Theme struct {
	Title, Muted, Accent, Success, Error, Warn lipgloss.Style
	Selected, Label, Focused                   lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	SymOK, SymFail, SymCursor string
}

var current = classic()

// ThemeNames lists every theme SetTheme knows.
func ThemeNames() []string { return []string{ThemeClassic, ThemeNeon, ThemeMono} }

// SetTheme switches the current theme; unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case ThemeNeon:
		current = neon()
	case ThemeMono:
		current = mono()
	default:
		current = classic()
	}
}

// Current returns the active theme.
func Current() Theme { return current }

func classic() Theme {
	return Theme{
		Title:       lipgloss.NewStyle().Bold(true),
		Muted:       lipgloss.NewStyle().Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warn:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Selected:    lipgloss.NewStyle().Bold(true).Reverse(true),
		Label:       lipgloss.NewStyle().Faint(true).Width(7),
		Focused:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true).Width(7),
		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("8"),
		SymOK:       "✔", SymFail: "✖", SymCursor: ">",
	}
}

func neon() Theme {
	t := classic()
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	t.Warn = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	t.Focused = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true).Width(7)
	t.Border = lipgloss.ThickBorder()
	t.BorderColor = lipgloss.Color("13")
	t.SymCursor = "❯"
	return t
}

func mono() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Title: plain.Bold(true), Muted: plain, Accent: plain,
		Success: plain, Error: plain.Bold(true), Warn: plain.Bold(true),
		Selected:    plain.Reverse(true),
		Label:       plain.Width(7),
		Focused:     plain.Bold(true).Width(7),
		Border:      lipgloss.NormalBorder(),
		BorderColor: lipgloss.NoColor{},
		SymOK:       "ok", SymFail: "error:", SymCursor: ">",
	}
}
