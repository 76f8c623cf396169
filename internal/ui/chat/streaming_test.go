// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamingBufferPreservesOrder(t *testing.T) {
	buf := NewStreamingBuffer()
	buf.Write("Bonjour")
	buf.Write(", comment")
	buf.Write(" allez-vous?")

	batch, ok := buf.Flush()
	assert.True(t, ok)
	assert.Equal(t, "Bonjour, comment allez-vous?", batch)

	_, ok = buf.Flush()
	assert.False(t, ok)
}

func TestStreamingBufferForceFlushThreshold(t *testing.T) {
	buf := NewStreamingBuffer()
	for i := 0; i < flushBatchSize-1; i++ {
		buf.Write("x")
	}
	assert.False(t, buf.ShouldForceFlush())

	buf.Write("x")
	assert.True(t, buf.ShouldForceFlush())
}

func TestStreamingBufferReset(t *testing.T) {
	buf := NewStreamingBuffer()
	buf.Write("abandoned")
	buf.Reset()

	_, ok := buf.Flush()
	assert.False(t, ok)
	assert.Empty(t, buf.ForceFlush())
}

func TestStreamingBufferConcurrentWrites(t *testing.T) {
	buf := NewStreamingBuffer()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			buf.Write(fmt.Sprintf("[%d]", n))
		}(i)
	}
	wg.Wait()

	out := buf.ForceFlush()
	assert.Len(t, out, 30)
}
