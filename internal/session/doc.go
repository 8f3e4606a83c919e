// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the state behind the chat screen: the capped message
// history and the single in-flight completion request.
//
// A Session is driven from one event loop. Begin records the user's message
// and returns a Request; the Request runs on another goroutine; its Result
// comes back to the event loop and goes through Apply, which appends the
// reply or a failure notice.
//
// # Request lifecycle
//
//   - Begin cancels the previous request, if any. Only the newest request's
//     Result is ever applied; older ones are reported as OutcomeStale.
//   - Each request runs under a timeout (30s by default). A timeout is a
//     failure, shown to the user like any other.
//   - Cancellation (Cancel, or shutdown of the parent context) is silent.
//   - HTTP 429 gets its own message (RateLimitText); everything else gets
//     FailureText.
//
// # Usage
//
//	s := session.New(completer, session.Options{})
//	req, ok := s.Begin(input)
//	if !ok {
//	    return // blank input
//	}
//	res := req.Run(nil)
//	msg, outcome := s.Apply(res)
package session
