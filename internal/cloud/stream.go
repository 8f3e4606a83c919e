// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmaxmax/go-sse"
)

// doneSentinel terminates an OpenAI-style event stream.
const doneSentinel = "[DONE]"

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk represents a single chunk from a streaming response.
type StreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Role    string `json:"role,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// GetContent returns the content from the first choice's delta.
func (c *StreamChunk) GetContent() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// IsDone returns true if the chunk carries a finish reason.
func (c *StreamChunk) IsDone() bool {
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason != ""
	}
	return false
}

// StreamCallback is the function type called for each received chunk.
type StreamCallback func(chunk StreamChunk)

// StreamError represents an error that occurred during streaming,
// preserving any partial content received before the error.
type StreamError struct {
	Partial string // Content received before error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// STREAMING REQUESTS
// =============================================================================

// ChatStream performs a streaming chat completion request, invoking callback
// for every chunk that carries content or a finish reason.
//
// Errors before the first byte of the body are returned as-is (so
// ErrRateLimited is visible to errors.Is). Failures while reading the body
// are returned as *StreamError with the partial content.
func (c *Client) ChatStream(ctx context.Context, messages []ChatMessage, callback StreamCallback) error {
	resp, err := c.post(ctx, ChatRequest{Model: c.model, Messages: messages, Stream: true})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var partial strings.Builder
	for ev, err := range sse.Read(resp.Body, nil) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return &StreamError{Partial: partial.String(), Err: err}
		}

		data := strings.TrimSpace(ev.Data)
		if data == "" {
			continue
		}
		if data == doneSentinel {
			return nil
		}

		var chunk StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return &StreamError{Partial: partial.String(), Err: fmt.Errorf("failed to parse chunk: %w", err)}
		}

		content := chunk.GetContent()
		partial.WriteString(content)
		if content != "" || chunk.IsDone() {
			callback(chunk)
		}
	}

	// Body ended without [DONE]; treat a cancelled context as the cause.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &StreamError{Partial: partial.String(), Err: ctxErr}
	}
	return nil
}

// ChatStreamAccumulate streams a reply and returns the full content. onToken,
// if non-nil, is called for each content delta as it arrives.
func (c *Client) ChatStreamAccumulate(ctx context.Context, messages []ChatMessage, onToken func(string)) (string, error) {
	var sb strings.Builder
	err := c.ChatStream(ctx, messages, func(chunk StreamChunk) {
		content := chunk.GetContent()
		if content == "" {
			return
		}
		sb.WriteString(content)
		if onToken != nil {
			onToken(content)
		}
	})
	if err != nil {
		return sb.String(), err
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// IsCanceled reports whether err is a caller cancellation rather than a
// deadline or transport failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
