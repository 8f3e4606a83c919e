// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and history.
//
// # Key Types
//
//   - Message: A single chat entry authored by the user or the bot
//   - History: Ordered, length-capped list of messages
//   - Role: Message author enumeration (user, assistant)
//
// Messages are values. Once constructed they are never modified; History
// stores copies and hands out copies, so nothing outside the package can
// rewrite an entry after it has been appended.
//
// # Usage
//
//	h := model.NewHistory(model.DefaultCapacity)
//	h.Append(model.NewUserMessage("Hello!"))
//	h.Append(model.NewBotMessage("Hi there."))
//	for _, msg := range h.Messages() {
//	    fmt.Println(msg.Role().DisplayName(), msg.Text)
//	}
package model
