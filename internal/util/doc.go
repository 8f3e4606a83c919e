// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared across packages.
//
// # Key Functions
//
// Terminal width (display cells, via go-runewidth):
//   - StringWidth: Display width of a string
//   - TruncateWidth: Cut a string to a display width with an ellipsis
//   - WrapWidth: Word-wrap text to a display width
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
package util
