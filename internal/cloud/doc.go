// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the client for hosted, OpenAI-compatible chat
// completion endpoints.
//
// # Key Types
//
//   - Client: HTTP client with bearer auth, retry and optional throttling
//   - ChatMessage: Chat message in the endpoint's wire format
//   - ChatRequest: Request body for /chat/completions
//   - StreamChunk: One server-sent delta of a streamed reply
//
// # Usage
//
// Create a client and send a chat request:
//
//	client := cloud.NewClient(apiKey).
//	    WithBaseURL("https://api.openai.com/v1").
//	    WithModel("gpt-4o-mini")
//	resp, err := client.Chat(ctx, []cloud.ChatMessage{cloud.NewUserMessage("Hello")})
//
// Stream a reply token by token:
//
//	err := client.ChatStream(ctx, msgs, func(chunk cloud.StreamChunk) {
//	    fmt.Print(chunk.GetContent())
//	})
//
// # Errors
//
// HTTP failures are mapped to sentinel errors (ErrRateLimited,
// ErrAuthFailed, ErrModelNotFound) or an *APIError carrying the status.
// Use errors.Is / errors.As to classify them.
//
// # Security
//
// API keys are never logged. Only method, path, status and duration of a
// request are written to the log.
package cloud
