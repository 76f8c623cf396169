// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aelisapp/aelis-tui/internal/ui/styles"
)

// newTestModel returns a chat model with a sized viewport.
func newTestModel(t *testing.T) Model {
	t.Helper()
	m := New(styles.NewTheme(80, 24))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

// typeAndSubmit feeds text into the input and presses enter.
func typeAndSubmit(m Model, text string) (Model, tea.Cmd) {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

// drainCmd runs a command tree and collects the produced messages.
func drainCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drainCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// findTurnRequest digs a TurnRequestMsg out of a command tree.
func findTurnRequest(cmd tea.Cmd) (TurnRequestMsg, bool) {
	for _, msg := range drainCmd(cmd) {
		if req, ok := msg.(TurnRequestMsg); ok {
			return req, true
		}
	}
	return TurnRequestMsg{}, false
}

func TestSubmitStartsTurn(t *testing.T) {
	m := newTestModel(t)

	m, cmd := typeAndSubmit(m, "teach me numbers")

	req, ok := findTurnRequest(cmd)
	require.True(t, ok)
	assert.Equal(t, "teach me numbers", req.Content)
	assert.NotEmpty(t, req.MessageID)

	// User message plus assistant placeholder.
	assert.Equal(t, 2, m.MessageCount())
	assert.True(t, m.IsStreaming())
}

func TestSubmitWhileStreamingIsNoOp(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeAndSubmit(m, "first")
	require.True(t, m.IsStreaming())
	countBefore := m.MessageCount()

	m, cmd := typeAndSubmit(m, "second")

	_, ok := findTurnRequest(cmd)
	assert.False(t, ok)
	assert.Equal(t, countBefore, m.MessageCount())
}

func TestSubmitEmptyInputIsNoOp(t *testing.T) {
	m := newTestModel(t)

	m, cmd := typeAndSubmit(m, "   ")

	_, ok := findTurnRequest(cmd)
	assert.False(t, ok)
	assert.Equal(t, 0, m.MessageCount())
	assert.False(t, m.IsStreaming())
}

func TestStreamAssemblesChunksInOrder(t *testing.T) {
	m := newTestModel(t)
	m, cmd := typeAndSubmit(m, "greet me")
	req, _ := findTurnRequest(cmd)

	for _, chunk := range []string{"Bonjour", ", comment", " allez-vous?"} {
		m, _ = m.Update(StreamTokenMsg{MessageID: req.MessageID, Token: chunk})
	}
	m, _ = m.Update(StreamCompleteMsg{MessageID: req.MessageID})

	assert.False(t, m.IsStreaming())
	last := m.conversation.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, "Bonjour, comment allez-vous?", last.Content)
	assert.False(t, last.IsStreaming)
}

func TestStaleTokensAreDropped(t *testing.T) {
	m := newTestModel(t)
	m, cmd := typeAndSubmit(m, "greet me")
	req, _ := findTurnRequest(cmd)

	m, _ = m.Update(StreamTokenMsg{MessageID: req.MessageID, Token: "live"})
	m, _ = m.Update(StreamTokenMsg{MessageID: "someone-else", Token: "stale"})
	m, _ = m.Update(StreamCompleteMsg{MessageID: req.MessageID})

	assert.Equal(t, "live", m.conversation.LastMessage().Content)
}

func TestStaleCompleteIsIgnored(t *testing.T) {
	m := newTestModel(t)
	m, cmd := typeAndSubmit(m, "greet me")
	req, _ := findTurnRequest(cmd)

	m, _ = m.Update(StreamCompleteMsg{MessageID: "someone-else"})
	assert.True(t, m.IsStreaming())

	m, _ = m.Update(StreamCompleteMsg{MessageID: req.MessageID})
	assert.False(t, m.IsStreaming())
}

func TestResetClearsEverything(t *testing.T) {
	m := newTestModel(t)
	m, cmd := typeAndSubmit(m, "greet me")
	req, _ := findTurnRequest(cmd)
	m, _ = m.Update(StreamTokenMsg{MessageID: req.MessageID, Token: "partial"})

	m.Reset()

	assert.Equal(t, 0, m.MessageCount())
	assert.False(t, m.IsStreaming())
	assert.Empty(t, m.Phrases())

	// Chunks from the abandoned stream arrive with a stale ID and drop.
	m, _ = m.Update(StreamTokenMsg{MessageID: req.MessageID, Token: "late"})
	m, _ = m.Update(StreamTickMsg{})
	assert.Equal(t, 0, m.MessageCount())
}

func TestPhrasesExtractedFromFinishedReply(t *testing.T) {
	m := newTestModel(t)
	m, cmd := typeAndSubmit(m, "greet me")
	req, _ := findTurnRequest(cmd)

	m, _ = m.Update(StreamTokenMsg{MessageID: req.MessageID,
		Token: "Say [fr]bonjour[/fr] or [fr]salut[/fr]."})
	m, _ = m.Update(StreamCompleteMsg{MessageID: req.MessageID})

	assert.Equal(t, []string{"bonjour", "salut"}, m.Phrases())
}

func TestBeginLessonOpensPlaceholder(t *testing.T) {
	m := newTestModel(t)

	id, _ := m.BeginLesson()
	require.NotEmpty(t, id)
	assert.True(t, m.IsStreaming())
	assert.Equal(t, 1, m.MessageCount())

	m, _ = m.Update(StreamTokenMsg{MessageID: id, Token: "Bienvenue !"})
	m, _ = m.Update(StreamCompleteMsg{MessageID: id})
	assert.Equal(t, "Bienvenue !", m.conversation.LastMessage().Content)
}

func TestPhraseModeSelectsBySpokenDigit(t *testing.T) {
	m := newTestModel(t)
	m, cmd := typeAndSubmit(m, "greet me")
	req, _ := findTurnRequest(cmd)
	m, _ = m.Update(StreamTokenMsg{MessageID: req.MessageID,
		Token: "Try [fr]merci[/fr] and [fr]de rien[/fr]."})
	m, _ = m.Update(StreamCompleteMsg{MessageID: req.MessageID})

	// Arm play mode, pick phrase 2.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})

	msgs := drainCmd(cmd)
	require.Len(t, msgs, 1)
	speak, ok := msgs[0].(SpeakRequestMsg)
	require.True(t, ok)
	assert.Equal(t, "de rien", speak.Phrase)

	// Arm practice mode, pick phrase 1.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})

	msgs = drainCmd(cmd)
	require.Len(t, msgs, 1)
	practice, ok := msgs[0].(PracticeRequestMsg)
	require.True(t, ok)
	assert.Equal(t, "merci", practice.Phrase)
}

func TestPhrasesClearedByPhraseFreeReply(t *testing.T) {
	m := newTestModel(t)
	m, cmd := typeAndSubmit(m, "greet me")
	req, _ := findTurnRequest(cmd)
	m, _ = m.Update(StreamTokenMsg{MessageID: req.MessageID, Token: "Say [fr]bonjour[/fr]."})
	m, _ = m.Update(StreamCompleteMsg{MessageID: req.MessageID})
	require.Equal(t, []string{"bonjour"}, m.Phrases())

	m, cmd = typeAndSubmit(m, "explain that in English")
	req, _ = findTurnRequest(cmd)
	m, _ = m.Update(StreamTokenMsg{MessageID: req.MessageID, Token: "Of course, here is the explanation."})
	m, _ = m.Update(StreamCompleteMsg{MessageID: req.MessageID})

	assert.Empty(t, m.Phrases())

	// ctrl+l has nothing to address; the older reply's phrases are gone.
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "No French phrases")
}

func TestCompactLayoutDropsInputChrome(t *testing.T) {
	m := New(styles.NewTheme(40, 24))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 40, Height: 24})

	view := m.View()
	assert.NotContains(t, view, "╭")
	assert.NotContains(t, view, "new topic")

	wide := newTestModel(t)
	view = wide.View()
	assert.Contains(t, view, "╭")
	assert.Contains(t, view, "new topic")
}

func TestEscapeDismissesNotice(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(NoticeMsg{Text: "Playback is unavailable."})
	assert.Contains(t, m.View(), "unavailable")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotContains(t, m.View(), "unavailable")
}

func TestPhraseModeOutOfRangeDisarms(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})
	assert.Nil(t, cmd)

	// The digit was consumed by the mode, not typed into the input.
	assert.Empty(t, m.input.Value())
}
