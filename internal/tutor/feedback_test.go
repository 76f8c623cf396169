// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tutor

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedbackHandler returns a non-streaming chat completion whose message
// content is the given string.
func feedbackHandler(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w,
			`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`,
			content)
	}
}

func TestFeedbackParsesWellFormedReply(t *testing.T) {
	client := newTestClient(t, feedbackHandler(
		`{"score": 85, "feedback": "Très bien, watch the nasal vowel.", "userTranscript": "chat"}`))

	fb := client.RequestPronunciationFeedback(context.Background(), "chat", "chat", "English")

	assert.Equal(t, 85, fb.Score)
	assert.Equal(t, "Très bien, watch the nasal vowel.", fb.Feedback)
	assert.Equal(t, "chat", fb.UserTranscript)
}

func TestFeedbackToleratesFencesAndProse(t *testing.T) {
	client := newTestClient(t, feedbackHandler(
		"Here you go:\n```json\n{\"score\": 40, \"feedback\": \"Keep practicing.\", \"userTranscript\": \"sha\"}\n```"))

	fb := client.RequestPronunciationFeedback(context.Background(), "chat", "sha", "English")

	assert.Equal(t, 40, fb.Score)
	assert.Equal(t, "Keep practicing.", fb.Feedback)
}

func TestFeedbackBackfillsTranscript(t *testing.T) {
	client := newTestClient(t, feedbackHandler(
		`{"score": 70, "feedback": "Good effort."}`))

	fb := client.RequestPronunciationFeedback(context.Background(), "chat", "le chat", "English")
	assert.Equal(t, "le chat", fb.UserTranscript)
}

func TestFeedbackClampsScore(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`{"score": 250, "feedback": "f", "userTranscript": "t"}`, 100},
		{`{"score": -3, "feedback": "f", "userTranscript": "t"}`, 0},
	}
	for _, tt := range tests {
		client := newTestClient(t, feedbackHandler(tt.raw))
		fb := client.RequestPronunciationFeedback(context.Background(), "chat", "t", "English")
		assert.Equal(t, tt.want, fb.Score)
	}
}

func TestFeedbackTransportFailureFallsBack(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"down"}}`, http.StatusServiceUnavailable)
	})

	fb := client.RequestPronunciationFeedback(context.Background(), "chat", "le chat", "English")

	assert.Equal(t, 0, fb.Score)
	assert.Equal(t, feedbackFallbackMessage, fb.Feedback)
	assert.Equal(t, "le chat", fb.UserTranscript)
}

func TestFeedbackEmptyTranscriptBoundary(t *testing.T) {
	// Even with everything failing, an empty transcript yields a complete
	// zero-score result with a placeholder transcript.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusInternalServerError)
	})

	fb := client.RequestPronunciationFeedback(context.Background(), "chat", "", "English")

	assert.Equal(t, 0, fb.Score)
	assert.NotEmpty(t, fb.Feedback)
	assert.Equal(t, emptyTranscriptPlaceholder, fb.UserTranscript)
}

func TestFeedbackUnparseableReplyFallsBack(t *testing.T) {
	client := newTestClient(t, feedbackHandler("I cannot produce JSON today."))

	fb := client.RequestPronunciationFeedback(context.Background(), "chat", "chat", "English")

	assert.Equal(t, 0, fb.Score)
	assert.Equal(t, feedbackFallbackMessage, fb.Feedback)
}

func TestParseFeedback(t *testing.T) {
	fb, ok := parseFeedback(`prefix {"score": 9, "feedback": "ok", "userTranscript": "x"} suffix`)
	require.True(t, ok)
	assert.Equal(t, 9, fb.Score)

	_, ok = parseFeedback("no object here")
	assert.False(t, ok)

	_, ok = parseFeedback("{broken")
	assert.False(t, ok)
}
