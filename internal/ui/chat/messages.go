// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the lesson surface: the message list, the input
// line, and the streaming state machine that keeps exactly one reply open
// at a time.
//
// This file defines the Bubble Tea messages the chat view exchanges with
// the app model. The app owns the tutor session and the speech engines;
// the chat view owns the conversation and emits requests.
package chat

import "github.com/aelisapp/aelis-tui/internal/tutor"

// TurnRequestMsg asks the app to stream one user turn into the message
// identified by MessageID.
type TurnRequestMsg struct {
	MessageID string
	Content   string
}

// StreamTokenMsg delivers one streamed chunk. Chunks whose MessageID does
// not match the open message are stale (the stream was abandoned by a
// reset) and are dropped.
type StreamTokenMsg struct {
	MessageID string
	Token     string
}

// StreamCompleteMsg signals the end of a stream, successful or not. A
// transport failure has already been folded into the text as a fallback
// chunk; Err is for the status line and the debug log.
type StreamCompleteMsg struct {
	MessageID string
	Err       error
}

// StreamTickMsg drives the flush of batched tokens into the viewport.
type StreamTickMsg struct{}

// SpeakRequestMsg asks the app to play a French phrase aloud.
type SpeakRequestMsg struct {
	Phrase string
}

// PracticeRequestMsg asks the app to open the practice overlay.
type PracticeRequestMsg struct {
	Phrase string
}

// ResetRequestMsg asks the app to drop the session and return to the
// selector.
type ResetRequestMsg struct{}

// HelpRequestMsg asks the app to show the help overlay.
type HelpRequestMsg struct{}

// NoticeMsg puts a transient message on the status line, used for
// capability notices such as missing text-to-speech.
type NoticeMsg struct {
	Text string
}

// FeedbackReadyMsg carries a finished pronunciation assessment to the
// practice overlay.
type FeedbackReadyMsg struct {
	Feedback tutor.PronunciationFeedback
}

// TranscriptMsg carries the result of one listening attempt.
type TranscriptMsg struct {
	Transcript string
	Err        error
}
