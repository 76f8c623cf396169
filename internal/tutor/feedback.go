// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tutor

import (
	"context"
	"encoding/json"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// PronunciationFeedback is the scored assessment of one practice attempt.
// Feedback prose is in the user's native language.
type PronunciationFeedback struct {
	Score          int    `json:"score"`
	Feedback       string `json:"feedback"`
	UserTranscript string `json:"userTranscript"`
}

// fallbackFeedback is what the overlay renders when analysis fails for any
// reason. Deterministic so the worst case is still a complete result.
func fallbackFeedback(transcript string) PronunciationFeedback {
	if transcript == "" {
		transcript = emptyTranscriptPlaceholder
	}
	return PronunciationFeedback{
		Score:          0,
		Feedback:       feedbackFallbackMessage,
		UserTranscript: transcript,
	}
}

// RequestPronunciationFeedback asks the model to score one attempt at
// originalPhrase against its transcript. It always returns a renderable
// result: transport and parse failures collapse into the deterministic
// fallback rather than an error, and an empty transcript still produces a
// well-formed zero-score assessment.
func (c *Client) RequestPronunciationFeedback(ctx context.Context, originalPhrase, transcript, nativeLanguage string) PronunciationFeedback {
	if err := c.limiter.Wait(ctx); err != nil {
		return fallbackFeedback(transcript)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: feedbackPrompt(originalPhrase, transcript, nativeLanguage),
		}},
	})
	if err != nil || len(resp.Choices) == 0 {
		return fallbackFeedback(transcript)
	}

	fb, ok := parseFeedback(resp.Choices[0].Message.Content)
	if !ok {
		return fallbackFeedback(transcript)
	}

	// The model sometimes omits the transcript it was given; echo ours so
	// the overlay always shows what was heard.
	if fb.UserTranscript == "" {
		if transcript != "" {
			fb.UserTranscript = transcript
		} else {
			fb.UserTranscript = emptyTranscriptPlaceholder
		}
	}
	if fb.Feedback == "" {
		fb.Feedback = feedbackFallbackMessage
	}
	return fb
}

// parseFeedback extracts the JSON object from a model reply. Code fences and
// surrounding prose are tolerated; a missing or unparseable object is not.
func parseFeedback(raw string) (PronunciationFeedback, bool) {
	var fb PronunciationFeedback

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fb, false
	}

	if err := json.Unmarshal([]byte(raw[start:end+1]), &fb); err != nil {
		return fb, false
	}

	if fb.Score < 0 {
		fb.Score = 0
	}
	if fb.Score > 100 {
		fb.Score = 100
	}
	return fb, true
}
