// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and history.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single chat entry. Values are immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"is_user"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserMessage creates a message authored by the user.
func NewUserMessage(text string) Message {
	return newMessage(text, true)
}

// NewBotMessage creates a message authored by the bot. Error notices shown
// to the user are bot messages too.
func NewBotMessage(text string) Message {
	return newMessage(text, false)
}

func newMessage(text string, isUser bool) Message {
	return Message{
		ID:        generateID(),
		Text:      text,
		IsUser:    isUser,
		CreatedAt: time.Now(),
	}
}

// Role returns the wire role for the message author.
func (m Message) Role() Role {
	if m.IsUser {
		return RoleUser
	}
	return RoleAssistant
}

// IsZero reports whether m is the zero Message.
func (m Message) IsZero() bool {
	return m.ID == ""
}

// Preview returns a truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// EstimateTokens gives a rough estimate of token count.
// Uses the approximation of ~4 characters per token.
func (m Message) EstimateTokens() int {
	return (len(m.Text) + 3) / 4
}

// generateID returns a random UUID string.
func generateID() string {
	return uuid.New().String()
}
