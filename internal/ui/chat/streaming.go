// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	// flushInterval paces viewport rebuilds at roughly 30fps. Tokens can
	// arrive far faster than that; rebuilding per token wastes frames.
	flushInterval = 33 * time.Millisecond
	// flushBatchSize forces a flush once this many tokens are pending,
	// keeping latency low on slow tick delivery.
	flushBatchSize = 15
)

// StreamingBuffer accumulates tokens between viewport flushes. Tokens are
// written from the stream goroutine and drained on the UI loop, so access
// is mutex-protected. Order is preserved: a drain returns everything
// written so far, in arrival order.
type StreamingBuffer struct {
	mu      sync.Mutex
	pending strings.Builder
	tokens  int
}

// NewStreamingBuffer creates an empty buffer.
func NewStreamingBuffer() *StreamingBuffer {
	return &StreamingBuffer{}
}

// Write appends one token.
func (b *StreamingBuffer) Write(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.WriteString(token)
	b.tokens++
}

// Flush drains the buffer if a batch is due: either the batch size was
// reached or any tokens are pending at tick time. Returns false when there
// is nothing to drain.
func (b *StreamingBuffer) Flush() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tokens == 0 {
		return "", false
	}
	return b.drainLocked(), true
}

// ShouldForceFlush reports whether enough tokens are pending to flush
// without waiting for the next tick.
func (b *StreamingBuffer) ShouldForceFlush() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens >= flushBatchSize
}

// ForceFlush drains everything pending regardless of batch size.
func (b *StreamingBuffer) ForceFlush() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drainLocked()
}

// Reset discards pending tokens, used when a stream is abandoned.
func (b *StreamingBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.Reset()
	b.tokens = 0
}

func (b *StreamingBuffer) drainLocked() string {
	out := b.pending.String()
	b.pending.Reset()
	b.tokens = 0
	return out
}

// streamTickCmd schedules the next flush tick while a stream is active.
func streamTickCmd() tea.Cmd {
	return tea.Tick(flushInterval, func(time.Time) tea.Msg {
		return StreamTickMsg{}
	})
}
