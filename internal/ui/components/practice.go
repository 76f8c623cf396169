// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aelisapp/aelis-tui/internal/tutor"
	"github.com/aelisapp/aelis-tui/internal/ui/styles"
)

// PracticePhase tracks where one pronunciation attempt stands.
type PracticePhase int

const (
	// PhraseReady shows the phrase and waits for the user to start.
	PhraseReady PracticePhase = iota
	// PhraseListening means the microphone is live.
	PhraseListening
	// PhraseScoring means the transcript went off for assessment.
	PhraseScoring
	// PhraseScored shows the feedback result.
	PhraseScored
	// PhraseFailed shows a classified listening error.
	PhraseFailed
)

// PracticeOverlay is the pronunciation practice modal. It owns only
// presentation state; the app model runs the microphone and feedback
// commands and pushes results in.
type PracticeOverlay struct {
	theme *styles.Theme

	visible bool
	phase   PracticePhase
	phrase  string

	transcript string
	feedback   tutor.PronunciationFeedback
	failure    string

	width  int
	height int
}

// NewPracticeOverlay creates a hidden overlay.
func NewPracticeOverlay(theme *styles.Theme) PracticeOverlay {
	return PracticeOverlay{theme: theme}
}

// SetSize updates the overlay dimensions.
func (p *PracticeOverlay) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Open shows the overlay for one phrase, clearing any previous attempt.
// Every open starts from a clean slate so no listener state dangles.
func (p *PracticeOverlay) Open(phrase string) {
	p.visible = true
	p.phase = PhraseReady
	p.phrase = phrase
	p.transcript = ""
	p.feedback = tutor.PronunciationFeedback{}
	p.failure = ""
}

// Hide closes the overlay and drops attempt state.
func (p *PracticeOverlay) Hide() {
	p.visible = false
	p.phase = PhraseReady
	p.transcript = ""
	p.failure = ""
}

// IsVisible reports whether the overlay is showing.
func (p *PracticeOverlay) IsVisible() bool {
	return p.visible
}

// Phase returns the current attempt phase.
func (p *PracticeOverlay) Phase() PracticePhase {
	return p.phase
}

// Phrase returns the phrase under practice.
func (p *PracticeOverlay) Phrase() string {
	return p.phrase
}

// StartListening moves to the live-microphone phase.
func (p *PracticeOverlay) StartListening() {
	p.phase = PhraseListening
	p.failure = ""
}

// SetTranscript records what was heard and moves to scoring.
func (p *PracticeOverlay) SetTranscript(transcript string) {
	p.transcript = transcript
	p.phase = PhraseScoring
}

// Transcript returns the captured transcript.
func (p *PracticeOverlay) Transcript() string {
	return p.transcript
}

// SetFeedback records the assessment and shows the result.
func (p *PracticeOverlay) SetFeedback(fb tutor.PronunciationFeedback) {
	p.feedback = fb
	p.phase = PhraseScored
}

// SetFailure records a user-facing listening failure message.
func (p *PracticeOverlay) SetFailure(msg string) {
	p.failure = msg
	p.phase = PhraseFailed
}

// View renders the overlay box centered on the screen.
func (p PracticeOverlay) View() string {
	if !p.visible {
		return ""
	}
	t := p.theme

	var parts []string
	parts = append(parts, t.OverlayTitle.Render("Pronunciation Practice"))
	parts = append(parts, "")
	parts = append(parts, t.MessageText.Render("Say: ")+t.French.Render(p.phrase))
	parts = append(parts, "")

	switch p.phase {
	case PhraseReady:
		parts = append(parts, t.Muted.Render("Press space to start listening."))
	case PhraseListening:
		parts = append(parts, t.Warning.Render("● Listening..."))
	case PhraseScoring:
		parts = append(parts, t.Muted.Render(fmt.Sprintf("Heard: %q", p.transcript)))
		parts = append(parts, t.Muted.Render("Scoring your pronunciation..."))
	case PhraseScored:
		scoreStyle := lipgloss.NewStyle().
			Foreground(styles.ScoreColor(p.feedback.Score)).
			Bold(true)
		parts = append(parts, scoreStyle.Render(fmt.Sprintf("Score: %d / 100", p.feedback.Score)))
		parts = append(parts, "")
		parts = append(parts, t.MessageText.Render(p.feedback.Feedback))
		parts = append(parts, "")
		parts = append(parts, t.Muted.Render(fmt.Sprintf("You said: %q", p.feedback.UserTranscript)))
	case PhraseFailed:
		parts = append(parts, t.Error.Render(p.failure))
	}

	parts = append(parts, "")
	parts = append(parts, t.Help.Render(p.helpLine()))

	box := t.OverlayBox.Render(strings.Join(parts, "\n"))
	if p.width == 0 {
		return box
	}
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
}

func (p PracticeOverlay) helpLine() string {
	switch p.phase {
	case PhraseListening:
		return "esc: cancel"
	case PhraseScored, PhraseFailed:
		return "r: try again • esc: close"
	default:
		return "space: listen • esc: close"
	}
}
