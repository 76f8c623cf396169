// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tutor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// Session is a stateful handle to one tutoring conversation, scoped to a
// single (topic, native language) pair. It moves through
// uninitialized → active → closed; a closed session accepts no more turns.
//
// Sessions are not safe for concurrent use. The UI enforces one stream in
// flight at a time, which also serializes all history mutation.
type Session struct {
	ID             string
	Topic          string
	NativeLanguage string

	client  *Client
	history []openai.ChatCompletionMessage
	closed  bool
}

// StreamError reports a turn that died mid-stream. Partial holds whatever
// text was delivered before the failure; the fallback chunk has already been
// emitted by the time the caller sees this.
type StreamError struct {
	Partial string
	Err     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream failed after %d bytes: %v", len(e.Partial), e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Open creates an active session seeded with the persona instruction.
// The only failure mode is a missing client, which callers exclude by
// constructing the client first.
func (c *Client) Open(topic, nativeLanguage string) *Session {
	return &Session{
		ID:             uuid.NewString(),
		Topic:          topic,
		NativeLanguage: nativeLanguage,
		client:         c,
		history: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemInstruction(topic, nativeLanguage),
		}},
	}
}

// Close marks the session finished. Further turns fail with
// ErrSessionClosed. Closing does not cancel an in-flight stream; the caller
// owns that context.
func (s *Session) Close() {
	s.closed = true
}

// StartLesson streams the opening lesson for the session's topic.
func (s *Session) StartLesson(ctx context.Context, onChunk func(string)) error {
	return s.StreamTurn(ctx, lessonStartPrompt(s.Topic), onChunk)
}

// StreamTurn sends one user turn and delivers the reply incrementally.
// onChunk is invoked from this goroutine in strict arrival order; when
// StreamTurn returns, the turn is over and no further chunks follow.
//
// On transport failure, one apologetic fallback chunk is emitted after any
// partial text and the error is returned as a *StreamError for logging. The
// conversation stays usable either way.
func (s *Session) StreamTurn(ctx context.Context, userText string, onChunk func(string)) error {
	if s.closed {
		return ErrSessionClosed
	}

	s.history = append(s.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})
	s.pruneHistory()

	var reply strings.Builder
	err := s.streamCompletion(ctx, onChunk, &reply)
	if err != nil {
		onChunk(streamFallbackMessage)
		reply.WriteString(streamFallbackMessage)
	}

	// The reply enters history even when truncated, so the model sees the
	// same conversation the user does.
	s.history = append(s.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply.String(),
	})

	if err != nil {
		partial := strings.TrimSuffix(reply.String(), streamFallbackMessage)
		return &StreamError{Partial: partial, Err: classifyAPIError(err)}
	}
	return nil
}

// streamCompletion runs one streaming request, forwarding deltas to onChunk
// and mirroring them into reply.
func (s *Session) streamCompletion(ctx context.Context, onChunk func(string), reply *strings.Builder) error {
	if err := s.client.limiter.Wait(ctx); err != nil {
		return err
	}

	stream, err := s.client.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    s.client.model,
		Messages: s.history,
		Stream:   true,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			reply.WriteString(delta)
			onChunk(delta)
		}
	}
}

// pruneHistory drops the oldest exchanges once the history passes the token
// budget. The persona instruction at index 0 always survives, as does the
// newest turn.
func (s *Session) pruneHistory() {
	budget := s.client.tokenBudget
	for len(s.history) > 3 && s.historyTokens() > budget {
		// Remove the oldest non-system message.
		s.history = append(s.history[:1], s.history[2:]...)
	}
}

func (s *Session) historyTokens() int {
	total := 0
	for _, m := range s.history {
		total += s.client.countTokens(m.Content)
	}
	return total
}

// HistoryLen reports the number of messages currently retained, persona
// instruction included.
func (s *Session) HistoryLen() int {
	return len(s.history)
}
