// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// LayoutMode selects how much chrome fits the current terminal width.
type LayoutMode int

const (
	// LayoutCompact drops borders and labels below 60 columns.
	LayoutCompact LayoutMode = iota
	// LayoutNormal is the standard layout.
	LayoutNormal
	// LayoutWide adds breathing room above 120 columns.
	LayoutWide
)

const (
	compactWidthThreshold = 60
	wideWidthThreshold    = 120
)

// Theme holds every style the views render with. Built once and resized on
// every terminal size change. The color profile and background are detected
// once at startup and resolved into every style.
type Theme struct {
	width   int
	height  int
	profile termenv.Profile
	dark    bool

	// Chrome
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	InputBox  lipgloss.Style
	Help      lipgloss.Style

	// Message rendering
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	MessageText    lipgloss.Style
	Timestamp      lipgloss.Style

	// Inline markup
	French     lipgloss.Style
	FrenchTag  lipgloss.Style
	Bold       lipgloss.Style
	Link       lipgloss.Style

	// Notices
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style

	// Overlay boxes
	OverlayBox   lipgloss.Style
	OverlayTitle lipgloss.Style
}

// NewTheme builds the theme for a terminal size, resolving the adaptive
// palette against the detected color profile and background.
func NewTheme(width, height int) *Theme {
	return newThemeWith(width, height, termenv.ColorProfile(), termenv.HasDarkBackground())
}

// newThemeWith pins the terminal capabilities; tests use it to exercise
// both palettes and the monochrome degradation deterministically.
func newThemeWith(width, height int, profile termenv.Profile, dark bool) *Theme {
	t := &Theme{width: width, height: height, profile: profile, dark: dark}
	t.initStyles()
	return t
}

// pick resolves an adaptive pair for the detected background. Monochrome
// terminals get no color at all so chrome reads through bold, italic and
// underline alone.
func (t *Theme) pick(c lipgloss.AdaptiveColor) lipgloss.TerminalColor {
	if t.profile == termenv.Ascii {
		return lipgloss.NoColor{}
	}
	if t.dark {
		return lipgloss.Color(c.Dark)
	}
	return lipgloss.Color(c.Light)
}

// SetSize updates dimensions and rebuilds the width-dependent styles.
func (t *Theme) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.initStyles()
}

// Mode returns the layout mode for the current width.
func (t *Theme) Mode() LayoutMode {
	switch {
	case t.width > 0 && t.width < compactWidthThreshold:
		return LayoutCompact
	case t.width >= wideWidthThreshold:
		return LayoutWide
	default:
		return LayoutNormal
	}
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Foreground(t.pick(Blue)).
		Bold(true).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(t.pick(TextSecondary)).
		Background(t.pick(SurfaceDim)).
		Padding(0, 1)

	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.pick(Blue)).
		Padding(0, 1)

	t.Help = lipgloss.NewStyle().
		Foreground(t.pick(TextMuted))

	t.UserLabel = lipgloss.NewStyle().
		Foreground(t.pick(Violet)).
		Bold(true)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(t.pick(Blue)).
		Bold(true)

	t.MessageText = lipgloss.NewStyle().
		Foreground(t.pick(TextPrimary))

	t.Timestamp = lipgloss.NewStyle().
		Foreground(t.pick(TextMuted))

	t.French = lipgloss.NewStyle().
		Foreground(t.pick(Rose)).
		Italic(true)

	t.FrenchTag = lipgloss.NewStyle().
		Foreground(t.pick(TextMuted))

	t.Bold = lipgloss.NewStyle().
		Foreground(t.pick(TextPrimary)).
		Bold(true)

	t.Link = lipgloss.NewStyle().
		Foreground(t.pick(Blue)).
		Underline(true)

	t.Error = lipgloss.NewStyle().
		Foreground(t.pick(Rose)).
		Bold(true)

	t.Warning = lipgloss.NewStyle().
		Foreground(t.pick(Amber))

	t.Muted = lipgloss.NewStyle().
		Foreground(t.pick(TextMuted))

	t.OverlayBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.pick(Blue)).
		Background(t.pick(Surface)).
		Padding(1, 2)

	t.OverlayTitle = lipgloss.NewStyle().
		Foreground(t.pick(Blue)).
		Bold(true)
}

// Width returns the current terminal width.
func (t *Theme) Width() int {
	return t.width
}

// Height returns the current terminal height.
func (t *Theme) Height() int {
	return t.height
}
