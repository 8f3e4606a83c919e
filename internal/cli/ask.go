// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/promptline/internal/session"
)

// maxStdinQuery bounds how much of stdin ask reads as its question.
const maxStdinQuery = 1 << 20

// AskOptions configures RunAsk.
type AskOptions struct {
	Stream   bool
	Markdown bool
	Width    int
}

// RunAsk sends query once and prints the reply to out. Failure notices go
// to errOut and yield ErrRequestFailed.
func RunAsk(sess *session.Session, query string, out, errOut io.Writer, opts AskOptions) error {
	if session.NormalizeInput(query) == "" {
		return usageErrorf("ask needs a question: promptline ask \"...\"")
	}

	streamed := false
	var onToken func(string)
	if opts.Stream {
		onToken = func(token string) {
			streamed = true
			fmt.Fprint(out, token)
		}
	}

	msg, outcome, _ := sess.Send(query, onToken)
	if streamed {
		fmt.Fprintln(out)
	}

	switch outcome {
	case session.OutcomeReply:
		if !streamed {
			md := newMarkdownRenderer(opts.Markdown, opts.Width)
			fmt.Fprintln(out, md.Render(msg.Text))
		}
		return nil
	case session.OutcomeRateLimited, session.OutcomeFailed:
		fmt.Fprintln(errOut, errorStyle.Render(msg.Text))
		return fmt.Errorf("%w: %s", ErrRequestFailed, outcome)
	default:
		return fmt.Errorf("%w: %s", ErrRequestFailed, outcome)
	}
}

// ReadQuery returns the question for ask: the arguments if given, else stdin
// when it is not a terminal.
func ReadQuery(args Args, stdin io.Reader, stdinIsTTY bool) (string, error) {
	if strings.TrimSpace(args.Query) != "" || stdinIsTTY {
		return args.Query, nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinQuery))
	if err != nil {
		return "", fmt.Errorf("failed to read question from stdin: %w", err)
	}
	return string(data), nil
}

// HandleAsk runs ask against the process's standard streams.
func HandleAsk(sess *session.Session, args Args, opts AskOptions) error {
	query, err := ReadQuery(args, os.Stdin, IsTTY())
	if err != nil {
		return err
	}
	return RunAsk(sess, query, os.Stdout, os.Stderr, opts)
}
