// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sync"

// DefaultCapacity is the default maximum number of messages kept in history.
const DefaultCapacity = 50

// MaxCapacity is the largest history capacity accepted by NewHistory and SetCap.
const MaxCapacity = 10000

// =============================================================================
// HISTORY TYPE
// =============================================================================

// History is an ordered list of messages capped at a fixed length.
// When an append would exceed the cap, the oldest messages are dropped.
type History struct {
	mu       sync.RWMutex
	messages []Message
	capacity int
}

// NewHistory creates an empty history holding at most capacity messages.
// Capacities outside [1, MaxCapacity] are clamped.
func NewHistory(capacity int) *History {
	capacity = clampCapacity(capacity)
	return &History{
		messages: make([]Message, 0, min(capacity, DefaultCapacity)),
		capacity: capacity,
	}
}

func clampCapacity(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxCapacity {
		return MaxCapacity
	}
	return n
}

// Append adds msg to the end of the history and returns how many of the
// oldest messages were evicted to stay within the cap.
func (h *History) Append(msg Message) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
	return h.pruneLocked()
}

// pruneLocked drops the oldest messages until the cap holds.
// Caller must hold the write lock.
func (h *History) pruneLocked() int {
	excess := len(h.messages) - h.capacity
	if excess <= 0 {
		return 0
	}
	// Copy into a fresh slice so evicted messages are not pinned by the
	// backing array.
	kept := make([]Message, len(h.messages)-excess, cap(h.messages))
	copy(kept, h.messages[excess:])
	h.messages = kept
	return excess
}

// Messages returns a copy of the messages, oldest first.
func (h *History) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Last returns the most recent message.
func (h *History) Last() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// Len returns the number of messages currently held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Cap returns the maximum number of messages held.
func (h *History) Cap() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.capacity
}

// SetCap changes the cap, evicting the oldest messages if the history is
// now too long. Returns the number of evicted messages.
func (h *History) SetCap(capacity int) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.capacity = clampCapacity(capacity)
	return h.pruneLocked()
}

// Clear removes all messages. The cap is unchanged.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = h.messages[:0]
}

// IsEmpty returns true if there are no messages.
func (h *History) IsEmpty() bool {
	return h.Len() == 0
}
