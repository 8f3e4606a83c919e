// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_Constructors(t *testing.T) {
	user := NewUserMessage("hello")
	bot := NewBotMessage("hi")

	assert.True(t, user.IsUser)
	assert.Equal(t, RoleUser, user.Role())
	assert.False(t, bot.IsUser)
	assert.Equal(t, RoleAssistant, bot.Role())
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, user.ID, bot.ID)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestMessage_IDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewUserMessage("x").ID
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"unicode", "héllo wörld", 8, "héllo..."},
		{"tiny limit", "hello", 2, "he"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewBotMessage(tc.text).Preview(tc.maxLen))
		})
	}
}

func TestRole_DisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
	assert.Equal(t, "other", Role("other").DisplayName())
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestHistory_AppendKeepsOrder(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 5; i++ {
		h.Append(NewUserMessage(fmt.Sprintf("msg %d", i)))
	}

	msgs := h.Messages()
	require.Len(t, msgs, 5)
	for i, msg := range msgs {
		assert.Equal(t, fmt.Sprintf("msg %d", i), msg.Text)
	}
}

func TestHistory_NeverExceedsCap(t *testing.T) {
	const capacity = 4
	h := NewHistory(capacity)

	for i := 0; i < 25; i++ {
		h.Append(NewBotMessage(fmt.Sprintf("msg %d", i)))
		require.LessOrEqual(t, h.Len(), capacity)
	}

	msgs := h.Messages()
	require.Len(t, msgs, capacity)
	assert.Equal(t, "msg 21", msgs[0].Text, "oldest entries should be dropped first")
	assert.Equal(t, "msg 24", msgs[3].Text)
}

func TestHistory_AppendReportsEvictions(t *testing.T) {
	h := NewHistory(2)
	assert.Equal(t, 0, h.Append(NewUserMessage("a")))
	assert.Equal(t, 0, h.Append(NewUserMessage("b")))
	assert.Equal(t, 1, h.Append(NewUserMessage("c")))
}

func TestHistory_SetCapShrinks(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 10; i++ {
		h.Append(NewUserMessage(fmt.Sprintf("%d", i)))
	}

	evicted := h.SetCap(3)
	assert.Equal(t, 7, evicted)
	assert.Equal(t, 3, h.Cap())

	msgs := h.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "7", msgs[0].Text)
}

func TestHistory_CapClamped(t *testing.T) {
	assert.Equal(t, 1, NewHistory(0).Cap())
	assert.Equal(t, 1, NewHistory(-5).Cap())
	assert.Equal(t, MaxCapacity, NewHistory(MaxCapacity+1).Cap())
}

func TestHistory_MessagesIsCopy(t *testing.T) {
	h := NewHistory(5)
	h.Append(NewUserMessage("original"))

	msgs := h.Messages()
	msgs[0].Text = "changed"

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, "original", last.Text)
}

func TestHistory_LastAndClear(t *testing.T) {
	h := NewHistory(5)
	_, ok := h.Last()
	assert.False(t, ok)
	assert.True(t, h.IsEmpty())

	h.Append(NewUserMessage("one"))
	h.Append(NewBotMessage("two"))
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, "two", last.Text)

	h.Clear()
	assert.True(t, h.IsEmpty())
	assert.Equal(t, 5, h.Cap())
}
