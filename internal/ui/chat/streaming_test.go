// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// STREAMING BUFFER TESTS
// =============================================================================

func TestStreamingBuffer_Defaults(t *testing.T) {
	sb := NewStreamingBuffer()
	assert.Equal(t, 15, sb.batchSize)
	assert.Equal(t, time.Second/30, sb.minFlush)

	sb = NewStreamingBufferWithConfig(-1, 500)
	assert.Equal(t, 15, sb.batchSize)
	assert.Equal(t, time.Second/30, sb.minFlush)
}

func TestStreamingBuffer_FlushBySize(t *testing.T) {
	sb := NewStreamingBufferWithConfig(3, 1)

	sb.Write("A")
	sb.Write("B")
	_, ok := sb.Flush()
	assert.False(t, ok, "below batch size and within the frame interval")
	assert.Equal(t, 2, sb.Pending())

	sb.Write("C")
	content, ok := sb.Flush()
	assert.True(t, ok)
	assert.Equal(t, "ABC", content)
	assert.Zero(t, sb.Pending())
}

func TestStreamingBuffer_FlushByTime(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 60)
	sb.Write("slow")

	time.Sleep(25 * time.Millisecond)
	content, ok := sb.Flush()
	assert.True(t, ok)
	assert.Equal(t, "slow", content)
}

func TestStreamingBuffer_ForceFlushAndReset(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 1)

	_, ok := sb.ForceFlush()
	assert.False(t, ok)

	sb.Write("x")
	content, ok := sb.ForceFlush()
	assert.True(t, ok)
	assert.Equal(t, "x", content)

	sb.Write("dropped")
	sb.Reset()
	_, ok = sb.ForceFlush()
	assert.False(t, ok)
}

func TestStreamingBuffer_ConcurrentWrites(t *testing.T) {
	sb := NewStreamingBufferWithConfig(1000, 1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sb.Write("t")
			}
		}()
	}
	wg.Wait()

	content, ok := sb.ForceFlush()
	assert.True(t, ok)
	assert.Len(t, content, 800)
}
