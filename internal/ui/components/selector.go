// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the screen components for the aelis TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aelisapp/aelis-tui/internal/tutor"
	"github.com/aelisapp/aelis-tui/internal/ui/styles"
)

// selectorFocus identifies which pane of the selector receives keys.
type selectorFocus int

const (
	focusTopics selectorFocus = iota
	focusCustomTopic
	focusLanguages
)

// TopicChosenMsg is emitted when the user confirms a topic and language.
type TopicChosenMsg struct {
	Selection tutor.TopicSelection
}

// Selector is the opening screen: pick an interest (or type one) and a
// mother tongue, then start the session.
type Selector struct {
	theme *styles.Theme

	focus       selectorFocus
	topicCursor int
	langCursor  int
	customTopic textinput.Model

	width  int
	height int
}

// NewSelector creates the selector with the predefined topic list.
func NewSelector(theme *styles.Theme) Selector {
	ti := textinput.New()
	ti.Placeholder = "or type your own interest..."
	ti.CharLimit = 80
	ti.Width = 40

	return Selector{
		theme:       theme,
		customTopic: ti,
	}
}

// SetSize updates the component dimensions.
func (s *Selector) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Reset returns the selector to its initial state for a fresh pick.
func (s *Selector) Reset() {
	s.focus = focusTopics
	s.topicCursor = 0
	s.langCursor = 0
	s.customTopic.Reset()
	s.customTopic.Blur()
}

// Selection returns the current choice. The custom topic wins when typed.
func (s Selector) Selection() tutor.TopicSelection {
	topic := strings.TrimSpace(s.customTopic.Value())
	if topic == "" {
		topic = tutor.PredefinedTopics[s.topicCursor]
	}
	return tutor.TopicSelection{
		Topic:          topic,
		NativeLanguage: tutor.Languages[s.langCursor].Code,
	}
}

// Init implements tea.Model.
func (s Selector) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key input for the selector.
func (s Selector) Update(msg tea.Msg) (Selector, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			return s.cycleFocus(1), nil
		case "shift+tab":
			return s.cycleFocus(-1), nil
		case "enter":
			sel := s.Selection()
			return s, func() tea.Msg {
				return TopicChosenMsg{Selection: sel}
			}
		}

		switch s.focus {
		case focusTopics:
			switch msg.String() {
			case "up", "k":
				if s.topicCursor > 0 {
					s.topicCursor--
				}
			case "down", "j":
				if s.topicCursor < len(tutor.PredefinedTopics)-1 {
					s.topicCursor++
				}
			}
		case focusLanguages:
			switch msg.String() {
			case "up", "k":
				if s.langCursor > 0 {
					s.langCursor--
				}
			case "down", "j":
				if s.langCursor < len(tutor.Languages)-1 {
					s.langCursor++
				}
			}
		case focusCustomTopic:
			var cmd tea.Cmd
			s.customTopic, cmd = s.customTopic.Update(msg)
			return s, cmd
		}
		return s, nil
	}

	// Cursor blink and other input housekeeping.
	if s.focus == focusCustomTopic {
		var cmd tea.Cmd
		s.customTopic, cmd = s.customTopic.Update(msg)
		return s, cmd
	}
	return s, nil
}

// cycleFocus moves keyboard focus between the three panes.
func (s Selector) cycleFocus(dir int) Selector {
	s.focus = selectorFocus((int(s.focus) + dir + 3) % 3)
	if s.focus == focusCustomTopic {
		s.customTopic.Focus()
	} else {
		s.customTopic.Blur()
	}
	return s
}

// View renders the selector screen.
func (s Selector) View() string {
	t := s.theme
	var b strings.Builder

	b.WriteString(t.OverlayTitle.Render("Bienvenue ! What would you like to explore in French?"))
	b.WriteString("\n\n")

	b.WriteString(t.Muted.Render(s.paneLabel("Interests", focusTopics)))
	b.WriteString("\n")
	for i, topic := range tutor.PredefinedTopics {
		line := "  " + topic
		if i == s.topicCursor && s.focus == focusTopics {
			line = t.Header.Render("> " + topic)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(s.customTopic.View())
	b.WriteString("\n\n")

	b.WriteString(t.Muted.Render(s.paneLabel("I speak", focusLanguages)))
	b.WriteString("\n")
	for i, lang := range tutor.Languages {
		label := fmt.Sprintf("  %s", lang.Name)
		if i == s.langCursor {
			label = fmt.Sprintf("  [x] %s", lang.Name)
			if s.focus == focusLanguages {
				label = t.Header.Render("> [x] " + lang.Name)
			}
		}
		b.WriteString(label + "\n")
	}

	// The footer is the first thing to go when the terminal is narrow.
	if t.Mode() != styles.LayoutCompact {
		b.WriteString("\n")
		b.WriteString(t.Help.Render("tab: switch pane • enter: start lesson • ctrl+c: quit"))
	}

	content := b.String()
	if s.width == 0 {
		return content
	}
	return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, content)
}

func (s Selector) paneLabel(name string, pane selectorFocus) string {
	if s.focus == pane {
		return name + " (active)"
	}
	return name
}
