// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/promptline/internal/config"
	"github.com/jeranaias/promptline/internal/session"
	"github.com/jeranaias/promptline/internal/ui/styles"
)

// DefaultDebounce is how long the draft must be unchanged before it counts
// as settled.
const DefaultDebounce = 300 * time.Millisecond

// Initial size used until the terminal reports its dimensions.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// chromeHeight is the number of lines outside the viewport: header,
// divider, input and footer.
const chromeHeight = 4

// Options configures the chat screen.
type Options struct {
	Theme     *styles.Theme
	ModelName string
	// Debounce is the settle interval for the draft. Zero settles
	// immediately.
	Debounce time.Duration
	Markdown bool
	// Send delivers streamed tokens to the running program, usually
	// (*tea.Program).Send. Without it replies appear only when complete.
	Send func(tea.Msg)
	// NewCompleter rebuilds the completer when the config is reloaded.
	NewCompleter func(*config.Config) session.Completer
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model of the chat screen. It renders the
// session's history and forwards input to it; the session owns all
// conversation state.
type Model struct {
	session  *session.Session
	theme    *styles.Theme
	keys     KeyMap
	renderer *Renderer
	markdown bool

	modelName string
	width     int
	height    int

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// Debounced draft
	debounce    time.Duration
	debounceTag uint64
	settled     string

	// In-flight request
	streamSeq uint64
	draft     string
	buffer    *StreamingBuffer
	ticking   bool

	send         func(tea.Msg)
	newCompleter func(*config.Config) session.Completer

	status   string
	quitting bool
}

// New creates the chat screen for sess.
func New(sess *session.Session, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}

	input := textinput.New()
	input.Prompt = "> "
	input.PromptStyle = opts.Theme.InputPrompt
	input.Placeholder = "Ask anything..."
	input.Focus()

	sp := spinner.New(
		spinner.WithSpinner(styles.Spinner),
		spinner.WithStyle(opts.Theme.Spinner),
	)

	m := Model{
		session:      sess,
		theme:        opts.Theme,
		keys:         DefaultKeyMap(),
		markdown:     opts.Markdown,
		modelName:    opts.ModelName,
		input:        input,
		viewport:     viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner:      sp,
		debounce:     opts.Debounce,
		buffer:       NewStreamingBuffer(),
		send:         opts.Send,
		newCompleter: opts.NewCompleter,
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Busy reports whether a request is in flight.
func (m Model) Busy() bool {
	return m.session.Busy()
}

// Settled returns the last settled draft.
func (m Model) Settled() string {
	return m.settled
}

// Draft returns the partial reply of the in-flight request.
func (m Model) Draft() string {
	return m.draft
}

// Status returns the transient status line.
func (m Model) Status() string {
	return m.status
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	m.viewport.Width = width
	m.viewport.Height = max(1, height-chromeHeight)
	m.input.Width = max(1, width-len(m.input.Prompt)-1)

	if m.renderer == nil || m.renderer.Width() != width-2 {
		m.renderer = NewRenderer(m.theme, width-2, m.markdown)
	}
	m.refresh(false)
}

// refresh re-renders the transcript. The view follows new content when it
// was already at the bottom or when bottom is set.
func (m *Model) refresh(bottom bool) {
	follow := bottom || m.viewport.AtBottom()
	m.viewport.SetContent(m.renderer.Transcript(m.session.Messages(), m.draft))
	if follow {
		m.viewport.GotoBottom()
	}
}

// endStream forgets the partial reply of the current request.
func (m *Model) endStream() {
	m.streamSeq = 0
	m.draft = ""
	m.buffer.Reset()
}
