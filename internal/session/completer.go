// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"

	"github.com/jeranaias/promptline/internal/cloud"
)

// Completer produces a reply for a prompt. onToken, if non-nil, receives
// partial content as it arrives; the returned string is the full reply.
// Implementations must return promptly once ctx is done.
type Completer interface {
	Complete(ctx context.Context, prompt string, onToken func(string)) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string, onToken func(string)) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string, onToken func(string)) (string, error) {
	return f(ctx, prompt, onToken)
}

// CloudCompleter sends each prompt as a single user message to a
// completion endpoint.
type CloudCompleter struct {
	Client *cloud.Client
	// Stream selects the server-sent events API so replies render as they
	// arrive.
	Stream bool
}

// NewCloudCompleter creates a Completer backed by client.
func NewCloudCompleter(client *cloud.Client, stream bool) *CloudCompleter {
	return &CloudCompleter{Client: client, Stream: stream}
}

// Complete implements Completer.
func (c *CloudCompleter) Complete(ctx context.Context, prompt string, onToken func(string)) (string, error) {
	messages := []cloud.ChatMessage{cloud.NewUserMessage(prompt)}

	if c.Stream {
		return c.Client.ChatStreamAccumulate(ctx, messages, onToken)
	}

	resp, err := c.Client.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	content := resp.GetContent()
	if onToken != nil && content != "" {
		onToken(content)
	}
	return content, nil
}
