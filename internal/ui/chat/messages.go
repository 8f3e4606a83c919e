// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/promptline/internal/config"
	"github.com/jeranaias/promptline/internal/session"
)

// =============================================================================
// INPUT MESSAGES
// =============================================================================

// InputSettledMsg is delivered when the draft has not changed for the
// debounce interval. Tag identifies the keystroke that scheduled it; only
// the most recent tag is applied.
type InputSettledMsg struct {
	Tag  uint64
	Text string
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamTokenMsg carries streamed content for request Seq.
type StreamTokenMsg struct {
	Seq   uint64
	Token string
}

// StreamTickMsg drives buffered rendering while a request is in flight.
type StreamTickMsg struct {
	Time time.Time
}

// StreamDoneMsg is returned when a request finishes, fails or is cancelled.
type StreamDoneMsg struct {
	Result session.Result
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a configuration reloaded from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// ConfigErrorMsg reports a failed reload; the previous configuration stays
// in effect.
type ConfigErrorMsg struct {
	Err error
}
