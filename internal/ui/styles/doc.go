// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles holds the colors and lipgloss styles of the chat screen.
//
// Colors are adaptive: each has a light and a dark variant, picked from the
// detected (or configured) terminal background. Setting NO_COLOR drops the
// color profile to plain ASCII.
package styles
