// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the in-memory conversation data used by the TUI.
//
// A conversation is an ordered list of messages. Assistant messages are
// created empty and filled by appending streamed chunks; at most one message
// is open for streaming at a time. Nothing here is persisted: the whole
// history lives and dies with the session.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser is a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant is a tutor reply.
	RoleAssistant Role = "assistant"
	// RoleSystem is the persona instruction seeding the session.
	RoleSystem Role = "system"
)

// Message is one entry in the conversation.
//
// While IsStreaming is true the content lives in a strings.Builder so chunk
// appends stay cheap; Finalize moves the accumulated text into Content.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time

	IsStreaming   bool
	streamContent strings.Builder
}

// NewUserMessage creates a completed user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an empty assistant placeholder that is open
// for streaming.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          uuid.NewString(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// AppendChunk adds one streamed chunk. No-op once the message is finalized.
func (m *Message) AppendChunk(chunk string) {
	if !m.IsStreaming {
		return
	}
	m.streamContent.WriteString(chunk)
}

// Finalize closes the stream and fixes the content. Safe to call twice.
func (m *Message) Finalize() {
	if !m.IsStreaming {
		return
	}
	m.Content = m.streamContent.String()
	m.IsStreaming = false
	m.streamContent.Reset()
}

// DisplayContent returns what should be rendered right now: the accumulator
// while streaming, the final content afterwards.
func (m *Message) DisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// IsEmpty reports whether the message has no visible text yet.
func (m *Message) IsEmpty() bool {
	return m.DisplayContent() == ""
}
