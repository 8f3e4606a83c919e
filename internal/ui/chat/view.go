// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/promptline/internal/util"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.theme.Divider.Render(strings.Repeat("-", m.width)),
		m.viewport.View(),
		m.input.View(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Header.Render("promptline")
	name := m.theme.HeaderModel.Render(util.TruncateWidth(m.modelName, m.width/2))

	hist := m.session.History()
	count := m.theme.Footer.Render(fmt.Sprintf("%d/%d", hist.Len(), hist.Cap()))

	left := title + " " + name
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(count)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + count
}

func (m Model) renderFooter() string {
	var parts []string

	if m.session.Busy() {
		parts = append(parts, m.spinner.View()+" "+m.theme.Footer.Render("waiting for reply"))
		parts = append(parts, m.renderHelp(m.keys.BusyHelp()))
	} else {
		parts = append(parts, m.renderHelp(m.keys.ShortHelp()))
	}

	if m.settled != "" {
		n := utf8.RuneCountInString(m.settled)
		parts = append(parts, m.theme.CharCount.Render(fmt.Sprintf("%d chars", n)))
	}
	if m.status != "" {
		parts = append(parts, m.theme.Footer.Render(m.status))
	}

	return util.TruncateWidth(strings.Join(parts, "  "), m.width)
}

func (m Model) renderHelp(bindings []key.Binding) string {
	items := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		items = append(items, m.theme.FooterKey.Render(h.Key)+" "+m.theme.Footer.Render(h.Desc))
	}
	return strings.Join(items, "  ")
}
