// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/google/uuid"

// Conversation owns the ordered message history for one tutoring session.
// It is mutated only from the UI event loop, so it carries no locking.
type Conversation struct {
	ID       string
	Messages []*Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{ID: uuid.NewString()}
}

// AddUserMessage appends a completed user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.Messages = append(c.Messages, msg)
	return msg
}

// AddAssistantPlaceholder appends an empty assistant message open for
// streaming. Any previously open message is finalized first so only one
// message ever receives chunks.
func (c *Conversation) AddAssistantPlaceholder() *Message {
	c.FinalizeLast()
	msg := NewAssistantMessage()
	c.Messages = append(c.Messages, msg)
	return msg
}

// AppendToLast routes a streamed chunk to the open assistant message.
// Chunks arriving when no message is open are dropped; that happens when a
// stream was abandoned by a reset.
func (c *Conversation) AppendToLast(chunk string) {
	last := c.LastMessage()
	if last == nil || !last.IsStreaming {
		return
	}
	last.AppendChunk(chunk)
}

// FinalizeLast closes the open assistant message, if any.
func (c *Conversation) FinalizeLast() {
	last := c.LastMessage()
	if last != nil && last.IsStreaming {
		last.Finalize()
	}
}

// LastMessage returns the most recent message, or nil when empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Reset drops the whole history. The conversation keeps its identity; the
// caller decides whether a fresh session follows.
func (c *Conversation) Reset() {
	c.Messages = nil
}
