// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/promptline/internal/config"
	"github.com/jeranaias/promptline/internal/session"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case InputSettledMsg:
		if msg.Tag == m.debounceTag {
			m.settled = msg.Text
		}
		return m, nil

	case StreamTokenMsg:
		m.handleToken(msg)
		return m, nil

	case StreamTickMsg:
		return m.handleTick()

	case StreamDoneMsg:
		m.handleDone(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.session.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ConfigReloadedMsg:
		m.applyConfig(msg.Config)
		return m, nil

	case ConfigErrorMsg:
		m.status = "Config reload failed; keeping previous settings."
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.session.Cancel()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.session.Cancel() {
			m.endStream()
			m.status = "Cancelled."
			m.refresh(true)
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Clear):
		m.session.Reset()
		m.endStream()
		m.status = ""
		m.refresh(true)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.scheduleSettle())
}

// scheduleSettle publishes the draft once it has been quiet for the
// debounce interval. Each call supersedes the previous one.
func (m *Model) scheduleSettle() tea.Cmd {
	m.debounceTag++
	tag, text := m.debounceTag, m.input.Value()
	if m.debounce <= 0 {
		m.settled = text
		return nil
	}
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return InputSettledMsg{Tag: tag, Text: text}
	})
}

// =============================================================================
// REQUESTS
// =============================================================================

// submit starts a request for the current draft. A request already in
// flight is superseded.
func (m Model) submit() (tea.Model, tea.Cmd) {
	wasBusy := m.session.Busy()
	req, ok := m.session.Begin(m.input.Value())
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.debounceTag++
	m.settled = ""
	m.status = ""
	m.endStream()
	m.streamSeq = req.Seq
	m.refresh(true)

	cmds := []tea.Cmd{m.runRequest(req)}
	if !wasBusy {
		cmds = append(cmds, m.spinner.Tick)
	}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, streamTickCmd())
	}
	return m, tea.Batch(cmds...)
}

// runRequest performs req off the event loop. Tokens are forwarded through
// the program's Send; the final Result comes back as StreamDoneMsg.
func (m Model) runRequest(req *session.Request) tea.Cmd {
	send := m.send
	return func() tea.Msg {
		var onToken func(string)
		if send != nil {
			onToken = func(token string) {
				send(StreamTokenMsg{Seq: req.Seq, Token: token})
			}
		}
		return StreamDoneMsg{Result: req.Run(onToken)}
	}
}

func (m *Model) handleToken(msg StreamTokenMsg) {
	if msg.Seq == 0 || msg.Seq != m.streamSeq || msg.Seq != m.session.InFlightSeq() {
		return
	}
	m.buffer.Write(msg.Token)
	if content, ok := m.buffer.Flush(); ok {
		m.draft += content
		m.refresh(false)
	}
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.streamSeq == 0 {
		m.ticking = false
		return m, nil
	}
	if content, ok := m.buffer.Flush(); ok {
		m.draft += content
		m.refresh(false)
	}
	return m, streamTickCmd()
}

func (m *Model) handleDone(msg StreamDoneMsg) {
	_, outcome := m.session.Apply(msg.Result)
	if msg.Result.Seq == m.streamSeq {
		m.endStream()
	}
	if outcome == session.OutcomeStale {
		return
	}
	m.refresh(true)
}

// =============================================================================
// CONFIG
// =============================================================================

// applyConfig adopts a reloaded configuration. The in-flight request keeps
// the settings it started with.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.session.SetTimeout(cfg.Timeout())
	m.session.SetCap(cfg.Chat.HistoryCap)
	m.debounce = cfg.Debounce()

	if m.newCompleter != nil {
		m.session.SetCompleter(m.newCompleter(cfg))
		m.modelName = cfg.API.Model
	}
	if cfg.UI.Markdown != m.markdown {
		m.markdown = cfg.UI.Markdown
		m.renderer = NewRenderer(m.theme, m.width-2, m.markdown)
	}

	log.Printf("chat: config applied (model=%s timeout=%v cap=%d)", cfg.API.Model, cfg.Timeout(), cfg.Chat.HistoryCap)
	m.status = "Configuration reloaded."
	m.refresh(false)
}
