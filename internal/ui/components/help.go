// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/aelisapp/aelis-tui/internal/ui/styles"
)

const helpMarkdown = `# Aélis

A terminal French tutor. Pick an interest, pick your language, and learn.

## Chat

| Key | Action |
|-----|--------|
| enter | send your message |
| up / down | scroll the lesson |
| ctrl+n | new topic (resets the session) |
| ctrl+c | quit |

## French phrases

Phrases the tutor marks for you are numbered ‹1› ‹2› ... as they appear in
the latest reply.

| Key | Action |
|-----|--------|
| ctrl+l | play the newest phrase aloud |
| ctrl+p then 1-9 | play phrase *n* aloud |
| ctrl+t then 1-9 | practice phrase *n* |

## Practice

Say the phrase after pressing space. You get a score out of 100 and advice
in your own language.
`

// HelpOverlay renders the keybinding reference. The markdown body is
// rendered once with glamour and cached.
type HelpOverlay struct {
	theme    *styles.Theme
	rendered string
	visible  bool
	width    int
	height   int
}

// NewHelpOverlay renders the help text for the given width.
func NewHelpOverlay(theme *styles.Theme) HelpOverlay {
	return HelpOverlay{theme: theme, rendered: renderHelp(72)}
}

func renderHelp(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}

// SetSize updates dimensions and re-renders when the width shrinks below
// the cached wrap.
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
	if width > 0 && width < 76 {
		h.rendered = renderHelp(width - 4)
	}
}

// Show displays the overlay.
func (h *HelpOverlay) Show() {
	h.visible = true
}

// Hide hides the overlay.
func (h *HelpOverlay) Hide() {
	h.visible = false
}

// IsVisible reports whether the overlay is showing.
func (h *HelpOverlay) IsVisible() bool {
	return h.visible
}

// View renders the help overlay.
func (h HelpOverlay) View() string {
	if !h.visible {
		return ""
	}
	box := h.theme.OverlayBox.Render(h.rendered)
	if h.width == 0 {
		return box
	}
	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, box)
}
