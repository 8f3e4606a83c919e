// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements command-line parsing and the non-interactive
// front ends: the line-oriented chat, one-shot ask and the config command.
//
// Commands:
//
//	promptline [tui]          full-screen chat (falls back to chat without a terminal)
//	promptline chat           line-oriented chat
//	promptline ask QUESTION   one-shot question; reads stdin when no question is given
//	promptline config [show|path|init]
//	promptline version
//	promptline help
package cli
