// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/aelisapp/aelis-tui/internal/markup"
	"github.com/aelisapp/aelis-tui/internal/model"
	"github.com/aelisapp/aelis-tui/internal/ui/styles"
)

// renderConversation builds the viewport content for the whole message
// list.
func renderConversation(conv *model.Conversation, theme *styles.Theme, width int, showTimestamps bool) string {
	if conv.Len() == 0 {
		return theme.Muted.Render("Your lesson will appear here.")
	}

	blocks := make([]string, 0, conv.Len())
	for _, msg := range conv.Messages {
		blocks = append(blocks, renderMessage(msg, theme, width, showTimestamps))
	}
	return strings.Join(blocks, "\n\n")
}

// renderMessage renders one message: speaker label, optional timestamp,
// then the body with inline markup applied.
func renderMessage(msg *model.Message, theme *styles.Theme, width int, showTimestamps bool) string {
	var label string
	switch msg.Role {
	case model.RoleUser:
		label = theme.UserLabel.Render("You")
	default:
		label = theme.AssistantLabel.Render("Aélis")
	}
	if showTimestamps {
		label += " " + theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}

	body := renderBody(msg.DisplayContent(), theme)
	if msg.IsStreaming {
		body += theme.Muted.Render("▌")
	}

	wrapped := theme.MessageText.Width(width).Render(body)
	return label + "\n" + wrapped
}

// renderBody applies the inline markup styles. French phrases are numbered
// within the message so the play and practice modes can address them.
func renderBody(content string, theme *styles.Theme) string {
	var b strings.Builder
	phrase := 0
	for _, seg := range markup.Parse(content) {
		switch seg.Kind {
		case markup.KindFrench:
			phrase++
			b.WriteString(theme.French.Render(seg.Text))
			b.WriteString(theme.FrenchTag.Render(fmt.Sprintf("‹%d›", phrase)))
		case markup.KindBold:
			b.WriteString(theme.Bold.Render(seg.Text))
		case markup.KindLink:
			b.WriteString(theme.Link.Render(seg.Text))
		case markup.KindLineBreak:
			b.WriteString("\n")
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// phraseHintBar lists the addressable phrases while a phrase mode is
// armed, truncated to the terminal width.
func phraseHintBar(phrases []string, theme *styles.Theme, width int, action string) string {
	if len(phrases) == 0 {
		return theme.Warning.Render("No French phrases in the last reply.")
	}

	parts := make([]string, 0, len(phrases))
	for i, p := range phrases {
		if i >= 9 {
			break
		}
		parts = append(parts, fmt.Sprintf("%d:%s", i+1, p))
	}
	line := fmt.Sprintf("%s which phrase? %s", action, strings.Join(parts, "  "))
	return theme.Warning.Render(runewidth.Truncate(line, width, "…"))
}
