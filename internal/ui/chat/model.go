// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aelisapp/aelis-tui/internal/markup"
	"github.com/aelisapp/aelis-tui/internal/model"
	"github.com/aelisapp/aelis-tui/internal/ui/styles"
)

// State is the chat view's stream state. The one-stream-at-a-time rule
// lives here: submissions while StateStreaming are dropped.
type State int

const (
	// StateReady accepts user input.
	StateReady State = iota
	// StateStreaming has a reply in flight.
	StateStreaming
)

// phraseMode is the armed digit action, if any.
type phraseMode int

const (
	modeNone phraseMode = iota
	// modePlay: the next digit plays that phrase aloud.
	modePlay
	// modeDrill: the next digit opens practice for that phrase.
	modeDrill
)

const (
	inputHeight  = 3
	statusHeight = 1
)

// Model is the lesson surface. It owns the conversation, the input line,
// and the viewport; the app model owns the tutor session and feeds stream
// events in.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	conversation *model.Conversation
	buffer       *StreamingBuffer

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	state          State
	streamingMsgID string
	phrases        []string
	mode           phraseMode

	notice  string
	lastErr string

	showTimestamps bool
	width          int
	height         int
	ready          bool
}

// New creates the chat view.
func New(theme *styles.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Reply to Aélis..."
	ti.Prompt = "❯ "
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	return Model{
		theme:        theme,
		keys:         DefaultKeyMap(),
		conversation: model.NewConversation(),
		buffer:       NewStreamingBuffer(),
		input:        ti,
		spin:         sp,
	}
}

// SetShowTimestamps toggles per-message times.
func (m *Model) SetShowTimestamps(on bool) {
	m.showTimestamps = on
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// IsStreaming reports whether a reply is in flight.
func (m Model) IsStreaming() bool {
	return m.state == StateStreaming
}

// MessageCount returns the number of messages in the conversation.
func (m Model) MessageCount() int {
	return m.conversation.Len()
}

// Phrases returns the addressable French phrases of the latest reply.
func (m Model) Phrases() []string {
	return m.phrases
}

// BeginLesson opens the assistant placeholder for the session-opening
// stream and returns its message ID. No user message is added; the lesson
// start is implicit.
func (m *Model) BeginLesson() (string, tea.Cmd) {
	placeholder := m.conversation.AddAssistantPlaceholder()
	m.state = StateStreaming
	m.streamingMsgID = placeholder.ID
	m.lastErr = ""
	m.refreshViewport()
	return placeholder.ID, tea.Batch(streamTickCmd(), m.spin.Tick)
}

// Reset clears the conversation and every bit of stream state, regardless
// of an in-flight stream: its chunks will arrive with a stale message ID
// and be dropped.
func (m *Model) Reset() {
	m.conversation.Reset()
	m.buffer.Reset()
	m.state = StateReady
	m.streamingMsgID = ""
	m.phrases = nil
	m.mode = modeNone
	m.notice = ""
	m.lastErr = ""
	m.input.Reset()
	if m.ready {
		m.refreshViewport()
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamTokenMsg:
		return m.handleToken(msg)

	case StreamTickMsg:
		return m.handleTick()

	case StreamCompleteMsg:
		return m.handleComplete(msg)

	case NoticeMsg:
		m.notice = msg.Text
		return m, nil

	case spinner.TickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	// Cursor blink and other input housekeeping.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	inputH := inputHeight
	if m.theme.Mode() == styles.LayoutCompact {
		// No input border below 60 columns; the line itself is enough.
		inputH = 1
	}
	vpHeight := msg.Height - inputH - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}
	m.input.Width = msg.Width - 6
	m.refreshViewport()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// An armed phrase mode captures digits and esc before anything else.
	if m.mode != modeNone {
		return m.handlePhraseKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NewTopic):
		return m, emit(ResetRequestMsg{})

	case key.Matches(msg, m.keys.Help):
		return m, emit(HelpRequestMsg{})

	case key.Matches(msg, m.keys.Escape):
		m.notice = ""
		m.lastErr = ""
		return m, nil

	case key.Matches(msg, m.keys.PlayMode):
		m.mode = modePlay
		return m, nil

	case key.Matches(msg, m.keys.DrillMode):
		m.mode = modeDrill
		return m, nil

	case key.Matches(msg, m.keys.PlayLast):
		if len(m.phrases) == 0 {
			m.notice = "No French phrases to play yet."
			return m, nil
		}
		return m, emit(SpeakRequestMsg{Phrase: m.phrases[len(m.phrases)-1]})

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handlePhraseKey resolves an armed play or practice mode: a digit picks
// the phrase, anything else disarms.
func (m Model) handlePhraseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	mode := m.mode
	m.mode = modeNone

	n, err := strconv.Atoi(msg.String())
	if err != nil || n < 1 || n > len(m.phrases) {
		return m, nil
	}
	phrase := m.phrases[n-1]

	if mode == modeDrill {
		return m, emit(PracticeRequestMsg{Phrase: phrase})
	}
	return m, emit(SpeakRequestMsg{Phrase: phrase})
}

// handleSubmit starts a new turn. Submissions are dropped while a stream
// is in flight so the message list never grows under an open reply.
func (m Model) handleSubmit() (Model, tea.Cmd) {
	if m.state == StateStreaming {
		return m, nil
	}

	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	m.conversation.AddUserMessage(content)
	placeholder := m.conversation.AddAssistantPlaceholder()
	m.state = StateStreaming
	m.streamingMsgID = placeholder.ID
	m.notice = ""
	m.lastErr = ""
	m.input.Reset()
	m.refreshViewport()

	return m, tea.Batch(
		emit(TurnRequestMsg{MessageID: placeholder.ID, Content: content}),
		streamTickCmd(),
		m.spin.Tick,
	)
}

func (m Model) handleToken(msg StreamTokenMsg) (Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}
	m.buffer.Write(msg.Token)
	if m.buffer.ShouldForceFlush() {
		m.flushBuffer()
	}
	return m, nil
}

func (m Model) handleTick() (Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}
	m.flushBuffer()
	return m, streamTickCmd()
}

func (m Model) handleComplete(msg StreamCompleteMsg) (Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	m.flushBuffer()
	m.conversation.FinalizeLast()
	m.state = StateReady
	m.streamingMsgID = ""

	// Replaced wholesale so a phrase-free reply leaves nothing addressable;
	// digits must never reach back into an older message.
	if last := m.conversation.LastMessage(); last != nil {
		m.phrases = markup.FrenchPhrases(markup.Parse(last.Content))
	}
	if msg.Err != nil {
		m.lastErr = "The last reply was cut short."
	}

	m.refreshViewport()
	return m, nil
}

// flushBuffer drains pending tokens into the open message and rebuilds the
// viewport.
func (m *Model) flushBuffer() {
	batch, ok := m.buffer.Flush()
	if !ok {
		return
	}
	m.conversation.AppendToLast(batch)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := m.viewport.Width - 2
	if width < 10 {
		width = 10
	}
	// Very wide terminals cap the text measure so lines stay readable.
	if m.theme.Mode() == styles.LayoutWide && width > 100 {
		width = 100
	}
	m.viewport.SetContent(renderConversation(m.conversation, m.theme, width, m.showTimestamps))
	m.viewport.GotoBottom()
}

// View renders the chat surface: viewport, status line, input box.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.theme.Mode() == styles.LayoutCompact {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.theme.InputBox.Width(m.width - 2).Render(m.input.View()))
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.mode == modePlay:
		return phraseHintBar(m.phrases, m.theme, m.width, "Play")
	case m.mode == modeDrill:
		return phraseHintBar(m.phrases, m.theme, m.width, "Practice")
	case m.state == StateStreaming:
		return m.spin.View() + m.theme.Muted.Render(" Aélis is writing...")
	case m.lastErr != "":
		return m.theme.Error.Render(m.lastErr)
	case m.notice != "":
		return m.theme.Warning.Render(m.notice)
	default:
		help := "enter: send • ctrl+p: play • ctrl+t: practice • ctrl+n: new topic • F1: help"
		if m.theme.Mode() == styles.LayoutCompact {
			help = "enter: send • F1: help"
		}
		return m.theme.StatusBar.Render(help)
	}
}

// emit wraps a message in a command.
func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
