// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tutor implements the client side of the tutoring conversation.
//
// It talks to an OpenAI-compatible chat endpoint: streaming completions for
// lesson turns, a JSON-constrained completion for pronunciation feedback,
// and Whisper transcription for the practice microphone. Every external
// failure degrades into a renderable value; nothing here is allowed to take
// the UI down.
package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Error taxonomy for session-open and transport failures. The UI branches on
// these to pick a message; it never sees a raw SDK error.
var (
	// ErrNotConfigured means no API key was found. Detected before any
	// network call; the session never becomes active.
	ErrNotConfigured = errors.New("tutor: API key not configured")
	// ErrAuth means the endpoint rejected the credential.
	ErrAuth = errors.New("tutor: authentication failed")
	// ErrRateLimited means the endpoint asked us to slow down.
	ErrRateLimited = errors.New("tutor: rate limited")
	// ErrServer means the endpoint failed internally.
	ErrServer = errors.New("tutor: server error")
	// ErrSessionClosed means a turn was submitted after Close.
	ErrSessionClosed = errors.New("tutor: session closed")
)

const (
	// DefaultModel is the chat model used when the config names none.
	DefaultModel = "gpt-4o-mini"
	// defaultHistoryTokenBudget bounds the conversation context sent per
	// turn. Oldest turns are dropped first; the persona instruction is
	// never dropped.
	defaultHistoryTokenBudget = 6000
	// requestsPerMinute paces turn submission so a key-repeat or a stuck
	// enter key cannot burn through a quota.
	requestsPerMinute = 20
)

// Config carries the endpoint settings the client needs.
type Config struct {
	APIKey  string
	BaseURL string // empty = the SDK default endpoint
	Model   string

	// HistoryTokenBudget overrides defaultHistoryTokenBudget when > 0.
	HistoryTokenBudget int
}

// Client wraps the SDK client with pacing and token accounting.
type Client struct {
	api         *openai.Client
	model       string
	tokenBudget int
	limiter     *rate.Limiter
	encoder     *tiktoken.Tiktoken
}

// NewClient builds a client from config. A missing API key returns
// ErrNotConfigured so the caller can show the setup notice instead of
// failing on the first request.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	budget := cfg.HistoryTokenBudget
	if budget <= 0 {
		budget = defaultHistoryTokenBudget
	}

	// cl100k_base covers the GPT-4 family; close enough for pruning
	// decisions on any compatible endpoint.
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tutor: load token encoder: %w", err)
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       model,
		tokenBudget: budget,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerMinute)/60, 2),
		encoder:     encoder,
	}, nil
}

// Model returns the configured chat model name.
func (c *Client) Model() string {
	return c.model
}

// SetModel switches the chat model. Takes effect on the next request; open
// sessions keep their history.
func (c *Client) SetModel(model string) {
	if model != "" {
		c.model = model
	}
}

// countTokens measures text against the pruning budget.
func (c *Client) countTokens(text string) int {
	return len(c.encoder.Encode(text, nil, nil))
}

// Transcribe sends a recorded audio file to the Whisper endpoint and returns
// the transcript. Used by the speech input adapter.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Language: "fr",
	})
	if err != nil {
		return "", classifyAPIError(err)
	}
	return resp.Text, nil
}

// classifyAPIError folds SDK errors into the package taxonomy.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case apiErr.HTTPStatusCode == 429:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%w: %v", ErrServer, err)
		}
	}
	return err
}
