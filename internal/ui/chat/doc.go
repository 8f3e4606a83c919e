// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat screen.
//
// The screen is a Bubble Tea model layered over a session.Session. Typing
// updates a draft that settles after a short debounce; Enter hands the draft
// to the session, which cancels any request still in flight. The request
// runs as a tea.Cmd, streams tokens back through the program and finishes
// with a StreamDoneMsg that the session folds into the history. Results of
// superseded or cancelled requests are dropped without a trace.
//
// Key bindings:
//
//	Enter   send the draft
//	Esc     cancel the in-flight request
//	Ctrl+L  clear the history
//	PgUp    scroll up
//	PgDn    scroll down
//	Ctrl+C  quit
package chat
