// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// StringWidth returns the number of terminal cells s occupies.
// CJK characters and most emoji count as two cells.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth cuts s so that it fits in maxWidth cells, ending with "..."
// when anything was removed.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// WrapWidth word-wraps text to lines of at most width cells. Existing line
// breaks are kept. Words wider than width are broken mid-word.
func WrapWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out strings.Builder
	for i, para := range strings.Split(text, "\n") {
		if i > 0 {
			out.WriteByte('\n')
		}
		wrapParagraph(&out, para, width)
	}
	return out.String()
}

func wrapParagraph(out *strings.Builder, para string, width int) {
	lineWidth := 0
	for _, word := range strings.Fields(para) {
		w := runewidth.StringWidth(word)

		if lineWidth > 0 && lineWidth+1+w > width {
			out.WriteByte('\n')
			lineWidth = 0
		}
		if lineWidth > 0 {
			out.WriteByte(' ')
			lineWidth++
		}

		// Break words that cannot fit on a line of their own.
		for w > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				// A single rune is wider than the line; emit it alone.
				head = string([]rune(word)[:1])
			}
			out.WriteString(head)
			out.WriteByte('\n')
			word = word[len(head):]
			w = runewidth.StringWidth(word)
			lineWidth = 0
		}
		out.WriteString(word)
		lineWidth += w
	}
}
