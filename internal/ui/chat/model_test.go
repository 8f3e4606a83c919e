// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/promptline/internal/cloud"
	"github.com/jeranaias/promptline/internal/config"
	"github.com/jeranaias/promptline/internal/session"
)

// =============================================================================
// HELPERS
// =============================================================================

func echoCompleter(reply string) session.Completer {
	return session.CompleterFunc(func(ctx context.Context, prompt string, onToken func(string)) (string, error) {
		return reply, nil
	})
}

func newTestModel(t *testing.T, c session.Completer, opts Options) Model {
	t.Helper()
	opts.Theme = plainTheme(t)
	return New(session.New(c, session.Options{}), opts)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func typeText(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func press(t *testing.T, m Model, kt tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: kt})
}

// waitFor runs cmd, expanding batches, and returns the first message of
// type T. Commands run concurrently so slow ticks do not hold up the rest.
func waitFor[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	require.NotNil(t, cmd)

	out := make(chan tea.Msg, 64)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, bc := range batch {
					run(bc)
				}
				return
			}
			out <- msg
		}()
	}
	run(cmd)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg := <-out:
			if v, ok := msg.(T); ok {
				return v
			}
		case <-deadline:
			var zero T
			t.Fatalf("no %T produced", zero)
			return zero
		}
	}
}

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmit_AppendsUserThenReply(t *testing.T) {
	m := newTestModel(t, echoCompleter("hello back"), Options{})

	m, _ = typeText(t, m, "hi there")
	m, cmd := press(t, m, tea.KeyEnter)

	assert.True(t, m.Busy())
	assert.Empty(t, m.input.Value(), "input is cleared on submit")
	msgs := m.session.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi there", msgs[0].Text)
	assert.True(t, msgs[0].IsUser)

	done := waitFor[StreamDoneMsg](t, cmd)
	m, _ = update(t, m, done)

	assert.False(t, m.Busy())
	msgs = m.session.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello back", msgs[1].Text)
	assert.False(t, msgs[1].IsUser)
	assert.Contains(t, m.View(), "hello back")
}

func TestSubmit_BlankInputIsIgnored(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{})

	m, _ = typeText(t, m, "   ")
	m, cmd := press(t, m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.False(t, m.Busy())
	assert.Empty(t, m.session.Messages())
}

func TestSubmit_StreamsTokensThroughSend(t *testing.T) {
	sent := make(chan tea.Msg, 8)
	c := session.CompleterFunc(func(ctx context.Context, prompt string, onToken func(string)) (string, error) {
		onToken("Hel")
		onToken("lo")
		return "Hello", nil
	})
	m := newTestModel(t, c, Options{Send: func(msg tea.Msg) { sent <- msg }})

	m, _ = typeText(t, m, "q")
	m, cmd := press(t, m, tea.KeyEnter)
	seq := m.streamSeq

	done := waitFor[StreamDoneMsg](t, cmd)
	require.Len(t, sent, 2)
	first := (<-sent).(StreamTokenMsg)
	second := (<-sent).(StreamTokenMsg)
	assert.Equal(t, StreamTokenMsg{Seq: seq, Token: "Hel"}, first)
	assert.Equal(t, StreamTokenMsg{Seq: seq, Token: "lo"}, second)

	m, _ = update(t, m, done)
	assert.Equal(t, "Hello", m.session.Messages()[1].Text)
}

// =============================================================================
// STREAMING
// =============================================================================

func TestStreamTokens_BuildDraftUntilDone(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{})
	m.buffer = NewStreamingBufferWithConfig(1, 30)

	m, _ = typeText(t, m, "q")
	m, _ = press(t, m, tea.KeyEnter)
	seq := m.streamSeq
	require.NotZero(t, seq)

	m, _ = update(t, m, StreamTokenMsg{Seq: seq, Token: "Hel"})
	m, _ = update(t, m, StreamTokenMsg{Seq: seq + 7, Token: "XX"})
	m, _ = update(t, m, StreamTokenMsg{Seq: seq, Token: "lo"})
	assert.Equal(t, "Hello", m.Draft())
	assert.Contains(t, m.View(), "Hello")
	assert.Len(t, m.session.Messages(), 1, "the draft is not part of the history")

	m, _ = update(t, m, StreamDoneMsg{Result: session.Result{Seq: seq, Reply: "Hello"}})
	assert.Empty(t, m.Draft())
	assert.Len(t, m.session.Messages(), 2)
}

func TestStreamTick_FlushesAndStopsWhenIdle(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{})
	m.buffer = NewStreamingBufferWithConfig(100, 20)

	m, _ = typeText(t, m, "q")
	m, _ = press(t, m, tea.KeyEnter)
	assert.True(t, m.ticking)
	seq := m.streamSeq

	m, _ = update(t, m, StreamTokenMsg{Seq: seq, Token: "partial"})
	assert.Empty(t, m.Draft(), "held back until the frame interval passes")

	time.Sleep(60 * time.Millisecond)
	m, cmd := update(t, m, StreamTickMsg{Time: time.Now()})
	assert.Equal(t, "partial", m.Draft())
	assert.NotNil(t, cmd, "ticks continue while busy")

	m, _ = update(t, m, StreamDoneMsg{Result: session.Result{Seq: seq, Reply: "partial reply"}})
	m, cmd = update(t, m, StreamTickMsg{Time: time.Now()})
	assert.Nil(t, cmd)
	assert.False(t, m.ticking)
}

func TestSupersede_LatestRequestWins(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{})

	m, _ = typeText(t, m, "one")
	m, _ = press(t, m, tea.KeyEnter)
	first := m.streamSeq

	m, _ = typeText(t, m, "two")
	m, _ = press(t, m, tea.KeyEnter)
	second := m.streamSeq
	require.NotEqual(t, first, second)

	m, _ = update(t, m, StreamDoneMsg{Result: session.Result{Seq: first, Reply: "late reply"}})
	assert.True(t, m.Busy(), "a stale result does not end the current request")
	assert.Len(t, m.session.Messages(), 2)

	m, _ = update(t, m, StreamDoneMsg{Result: session.Result{Seq: second, Reply: "current reply"}})
	texts := []string{}
	for _, msg := range m.session.Messages() {
		texts = append(texts, msg.Text)
	}
	assert.Equal(t, []string{"one", "two", "current reply"}, texts)
}

func TestCancel_DropsResultSilently(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{})

	m, _ = typeText(t, m, "q")
	m, _ = press(t, m, tea.KeyEnter)
	seq := m.streamSeq

	m, _ = press(t, m, tea.KeyEsc)
	assert.False(t, m.Busy())
	assert.Equal(t, "Cancelled.", m.Status())

	m, _ = update(t, m, StreamDoneMsg{Result: session.Result{Seq: seq, Err: context.Canceled}})
	assert.Len(t, m.session.Messages(), 1)
}

func TestFailures_ShowNotices(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", cloud.ErrRateLimited, session.RateLimitText},
		{"server error", &cloud.APIError{Code: "500", Message: "boom", Status: 500}, session.FailureText},
		{"timeout", context.DeadlineExceeded, session.FailureText},
		{"other", errors.New("dns"), session.FailureText},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(t, echoCompleter("unused"), Options{})
			m, _ = typeText(t, m, "q")
			m, _ = press(t, m, tea.KeyEnter)

			m, _ = update(t, m, StreamDoneMsg{Result: session.Result{Seq: m.streamSeq, Err: tc.err}})
			msgs := m.session.Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, tc.want, msgs[1].Text)
			assert.Contains(t, m.View(), tc.want)
		})
	}
}

// =============================================================================
// DEBOUNCE
// =============================================================================

func TestDebounce_OnlyLatestTagSettles(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{Debounce: 10 * time.Millisecond})

	m, cmd1 := typeText(t, m, "a")
	m, cmd2 := typeText(t, m, "b")
	assert.Empty(t, m.Settled())

	early := waitFor[InputSettledMsg](t, cmd1)
	late := waitFor[InputSettledMsg](t, cmd2)
	assert.Equal(t, "a", early.Text)
	assert.Equal(t, "ab", late.Text)

	m, _ = update(t, m, early)
	assert.Empty(t, m.Settled(), "superseded keystroke is ignored")

	m, _ = update(t, m, late)
	assert.Equal(t, "ab", m.Settled())
	assert.Contains(t, m.View(), "2 chars")
}

func TestDebounce_SubmitInvalidatesPendingSettle(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{Debounce: 10 * time.Millisecond})

	m, cmd := typeText(t, m, "hello")
	pending := waitFor[InputSettledMsg](t, cmd)
	m, _ = press(t, m, tea.KeyEnter)

	m, _ = update(t, m, pending)
	assert.Empty(t, m.Settled())
}

func TestDebounce_ZeroSettlesImmediately(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{})
	m, _ = typeText(t, m, "now")
	assert.Equal(t, "now", m.Settled())
}

// =============================================================================
// KEYS, RESIZE, CONFIG
// =============================================================================

func TestClear_EmptiesHistory(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{})
	m, _ = typeText(t, m, "q")
	m, _ = press(t, m, tea.KeyEnter)

	m, _ = press(t, m, tea.KeyCtrlL)
	assert.Empty(t, m.session.Messages())
	assert.False(t, m.Busy())
}

func TestQuit_CancelsAndQuits(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{})
	m, _ = typeText(t, m, "q")
	m, _ = press(t, m, tea.KeyEnter)

	m, cmd := press(t, m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Busy())
	assert.Empty(t, m.View())
}

func TestWindowSize_ResizesViewport(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Equal(t, 100, m.viewport.Width)
	assert.Equal(t, 40-chromeHeight, m.viewport.Height)
	assert.Equal(t, 98, m.renderer.Width())
}

func TestConfigReloaded_AppliesSettings(t *testing.T) {
	var rebuilt *config.Config
	m := newTestModel(t, echoCompleter("old"), Options{
		ModelName: "old-model",
		NewCompleter: func(cfg *config.Config) session.Completer {
			rebuilt = cfg
			return echoCompleter("new")
		},
	})

	cfg := config.Default()
	cfg.API.Model = "new-model"
	cfg.API.TimeoutSecs = 5
	cfg.Chat.HistoryCap = 3
	cfg.Chat.DebounceMS = 50

	m, _ = update(t, m, ConfigReloadedMsg{Config: cfg})
	assert.Same(t, cfg, rebuilt)
	assert.Equal(t, 5*time.Second, m.session.Timeout())
	assert.Equal(t, 3, m.session.History().Cap())
	assert.Equal(t, 50*time.Millisecond, m.debounce)
	assert.Contains(t, m.View(), "new-model")
	assert.Equal(t, "Configuration reloaded.", m.Status())

	m, _ = typeText(t, m, "q")
	m, cmd := press(t, m, tea.KeyEnter)
	m, _ = update(t, m, waitFor[StreamDoneMsg](t, cmd))
	assert.Equal(t, "new", m.session.Messages()[1].Text)
}

func TestConfigError_KeepsSettings(t *testing.T) {
	m := newTestModel(t, echoCompleter("unused"), Options{})
	before := m.session.Timeout()
	m, _ = update(t, m, ConfigErrorMsg{Err: errors.New("bad toml")})
	assert.Equal(t, before, m.session.Timeout())
	assert.Contains(t, m.Status(), "reload failed")
}
