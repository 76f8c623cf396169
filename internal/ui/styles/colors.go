// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles centralizes colors and lipgloss styles for the aelis TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Core palette. Adaptive pairs keep contrast on both light and dark
// terminals.
var (
	// Blue carries the tutor's accents and the assistant speaker label.
	Blue = lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}
	// Rose marks French phrases and errors.
	Rose = lipgloss.AdaptiveColor{Light: "#be123c", Dark: "#fb7185"}
	// Emerald marks success and high pronunciation scores.
	Emerald = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34d399"}
	// Amber marks warnings and middling scores.
	Amber = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
	// Violet is the user speaker label.
	Violet = lipgloss.AdaptiveColor{Light: "#6d28d9", Dark: "#a78bfa"}
)

// Surfaces and text.
var (
	Surface    = lipgloss.AdaptiveColor{Light: "#f8fafc", Dark: "#1e293b"}
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#e2e8f0", Dark: "#0f172a"}

	TextPrimary   = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94a3b8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
)

// ScoreColor maps a pronunciation score to its display color: green from
// 80, amber from 50, rose below.
func ScoreColor(score int) lipgloss.AdaptiveColor {
	switch {
	case score >= 80:
		return Emerald
	case score >= 50:
		return Amber
	default:
		return Rose
	}
}
