// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/promptline/internal/session"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader reads prompt lines. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// NewLineReader returns a liner-backed reader with in-memory history.
// Ctrl+C at the prompt aborts it.
func NewLineReader() LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// =============================================================================
// CHAT LOOP
// =============================================================================

// ChatOptions configures RunChat.
type ChatOptions struct {
	// Stream prints tokens as they arrive.
	Stream bool
	// Markdown renders complete replies with glamour.
	Markdown bool
	// Width is the wrap width for rendered replies.
	Width int
	// Prompt is shown before each line. Default "you> ".
	Prompt string
}

// RunChat reads prompts from in until EOF, Ctrl+C at the prompt or /quit,
// and writes replies to out. Failures are shown inline; RunChat itself only
// returns input errors other than EOF and abort.
func RunChat(sess *session.Session, in LineReader, out io.Writer, opts ChatOptions) error {
	if opts.Prompt == "" {
		opts.Prompt = "you> "
	}
	md := newMarkdownRenderer(opts.Markdown && !opts.Stream, opts.Width)

	fmt.Fprintln(out, dimStyle.Render("Type a message and press Enter. /help lists commands, Ctrl+D exits."))

	for {
		input, err := in.Prompt(opts.Prompt)
		if err != nil {
			fmt.Fprintln(out)
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		in.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if !handleSlashCommand(input, sess, out) {
				return nil
			}
			continue
		}

		sendAndPrint(sess, input, out, md, opts.Stream)
	}
}

// sendAndPrint runs one request and prints its outcome.
func sendAndPrint(sess *session.Session, input string, out io.Writer, md *markdownRenderer, stream bool) session.Outcome {
	fmt.Fprintln(out, labelStyle.Render("assistant>"))

	streamed := false
	var onToken func(string)
	if stream {
		onToken = func(token string) {
			streamed = true
			fmt.Fprint(out, token)
		}
	}

	msg, outcome, _ := sess.Send(input, onToken)
	if streamed {
		fmt.Fprintln(out)
	}

	switch outcome {
	case session.OutcomeReply:
		if !streamed {
			fmt.Fprintln(out, md.Render(msg.Text))
		}
	case session.OutcomeRateLimited:
		fmt.Fprintln(out, warningStyle.Render(msg.Text))
	case session.OutcomeFailed:
		fmt.Fprintln(out, errorStyle.Render(msg.Text))
	default:
		fmt.Fprintln(out, dimStyle.Render("[cancelled]"))
	}
	fmt.Fprintln(out)
	return outcome
}

// handleSlashCommand runs a /command and reports whether the loop should
// continue.
func handleSlashCommand(input string, sess *session.Session, out io.Writer) bool {
	cmd := strings.ToLower(strings.Fields(input)[0])

	switch cmd {
	case "/quit", "/exit", "/q":
		return false

	case "/clear":
		sess.Reset()
		fmt.Fprintln(out, dimStyle.Render("History cleared."))

	case "/history":
		msgs := sess.Messages()
		if len(msgs) == 0 {
			fmt.Fprintln(out, dimStyle.Render("History is empty."))
		}
		for _, m := range msgs {
			fmt.Fprintf(out, "%-9s %s\n", m.Role().DisplayName()+":", m.Preview(70))
		}

	case "/help":
		fmt.Fprintln(out, "  /history   show the conversation")
		fmt.Fprintln(out, "  /clear     clear the conversation")
		fmt.Fprintln(out, "  /quit      leave")

	default:
		fmt.Fprintln(out, warningStyle.Render("Unknown command "+cmd+"; try /help."))
	}
	return true
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleChat runs the line-oriented chat on the terminal. Ctrl+C while a
// request is in flight cancels that request only.
func HandleChat(sess *session.Session, opts ChatOptions) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		for range sigs {
			sess.Cancel()
		}
	}()

	in := NewLineReader()
	defer in.Close()

	return RunChat(sess, in, os.Stdout, opts)
}
