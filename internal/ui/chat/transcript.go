// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/promptline/internal/model"
	"github.com/jeranaias/promptline/internal/session"
	"github.com/jeranaias/promptline/internal/ui/styles"
	"github.com/jeranaias/promptline/internal/util"
)

// =============================================================================
// TRANSCRIPT RENDERER
// =============================================================================

// Renderer turns the history into the text shown in the viewport.
// Messages never change once created, so rendered bodies are cached by
// message ID until the width changes.
type Renderer struct {
	theme    *styles.Theme
	width    int
	markdown bool

	md    *glamour.TermRenderer
	cache map[string]string
}

// NewRenderer creates a renderer for the given content width. When markdown
// is false, or glamour cannot be initialised, bot replies are wrapped as
// plain text.
func NewRenderer(theme *styles.Theme, width int, markdown bool) *Renderer {
	if width < 20 {
		width = 20
	}
	r := &Renderer{
		theme:    theme,
		width:    width,
		markdown: markdown,
		cache:    make(map[string]string),
	}
	if markdown {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(theme.GlamourStyle()),
			glamour.WithWordWrap(width-2),
		)
		if err != nil {
			log.Printf("chat: markdown renderer unavailable: %v", err)
		} else {
			r.md = md
		}
	}
	return r
}

// Width returns the content width.
func (r *Renderer) Width() int {
	return r.width
}

// Transcript renders every message followed, when non-empty, by the partial
// reply of the in-flight request.
func (r *Renderer) Transcript(msgs []model.Message, draft string) string {
	if len(msgs) == 0 && draft == "" {
		return r.theme.Footer.Render("Type a message and press Enter.")
	}

	blocks := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		blocks = append(blocks, r.Message(msg))
	}
	if draft != "" {
		blocks = append(blocks, r.Draft(draft))
	}
	if len(r.cache) > 2*len(msgs)+16 {
		r.prune(msgs)
	}
	return strings.Join(blocks, "\n\n")
}

// prune drops cached bodies of messages that left the history.
func (r *Renderer) prune(msgs []model.Message) {
	live := make(map[string]string, len(msgs))
	for _, msg := range msgs {
		if body, ok := r.cache[msg.ID]; ok {
			live[msg.ID] = body
		}
	}
	r.cache = live
}

// Message renders a single message with its speaker label.
func (r *Renderer) Message(msg model.Message) string {
	if cached, ok := r.cache[msg.ID]; ok && msg.ID != "" {
		return cached
	}

	var out string
	if msg.IsUser {
		out = r.userBlock(msg)
	} else {
		out = r.botBlock(msg)
	}
	if msg.ID != "" {
		r.cache[msg.ID] = out
	}
	return out
}

// Draft renders the partial reply as plain wrapped text. It is re-rendered
// on every flush, so markdown is deferred until the reply is final.
func (r *Renderer) Draft(text string) string {
	label := r.theme.BotLabel.Render(model.RoleAssistant.DisplayName())
	body := r.theme.Draft.Render(util.WrapWidth(text, r.width-2))
	return label + "\n" + indent(body, 2)
}

func (r *Renderer) userBlock(msg model.Message) string {
	right := lipgloss.NewStyle().Width(r.width).Align(lipgloss.Right)
	label := right.Render(r.theme.UserLabel.Render(model.RoleUser.DisplayName()))
	body := util.WrapWidth(msg.Text, r.width*3/4)
	return label + "\n" + right.Render(r.theme.UserText.Render(body))
}

func (r *Renderer) botBlock(msg model.Message) string {
	label := r.theme.BotLabel.Render(model.RoleAssistant.DisplayName())

	if isErrorText(msg.Text) {
		body := r.theme.ErrorText.Render(styles.StatusIndicators.Error + " " + msg.Text)
		return label + "\n" + indent(body, 2)
	}

	if r.md != nil {
		out, err := r.md.Render(msg.Text)
		if err == nil {
			return label + "\n" + strings.Trim(out, "\n")
		}
		log.Printf("chat: markdown render failed for %s: %v", msg.ID, err)
	}
	body := r.theme.BotText.Render(util.WrapWidth(msg.Text, r.width-2))
	return label + "\n" + indent(body, 2)
}

// isErrorText reports whether a bot message is one of the failure notices.
func isErrorText(text string) bool {
	return text == session.RateLimitText || text == session.FailureText
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
