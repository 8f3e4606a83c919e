// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"log"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/promptline/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle  = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(styles.BotLabelFg).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(styles.ErrorFg).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	dimStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders replies for terminal display. A nil renderer
// leaves text unchanged.
type markdownRenderer struct {
	r *glamour.TermRenderer
}

// newMarkdownRenderer returns a renderer for the given width, or a no-op
// renderer when enabled is false or glamour fails to initialise.
func newMarkdownRenderer(enabled bool, width int) *markdownRenderer {
	if !enabled {
		return &markdownRenderer{}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Printf("cli: markdown renderer unavailable: %v", err)
		return &markdownRenderer{}
	}
	return &markdownRenderer{r: r}
}

// Render renders content, falling back to the original text on failure.
func (m *markdownRenderer) Render(content string) string {
	if m == nil || m.r == nil {
		return content
	}
	out, err := m.r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
