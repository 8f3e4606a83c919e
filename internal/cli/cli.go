// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/jeranaias/promptline/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments. Zero values mean "not given on the
// command line" and leave the configuration untouched.
type Args struct {
	// Global flags
	Model      string
	BaseURL    string
	Timeout    int
	History    int
	NoStream   bool
	ConfigPath string
	Plain      bool
	Verbose    bool

	// Command-specific
	Query      string
	Subcommand string
}

const usageText = `promptline - a minimal chat client for OpenAI-compatible endpoints

Usage:
  promptline                    Start the full-screen chat (default)
  promptline chat               Line-oriented chat
  promptline ask "question"     Ask a single question and print the reply
  promptline config [show|path|init]
                                Show, locate or create the configuration
  promptline version            Show version information
  promptline help               Show this help

Flags:
  -m, --model NAME              Model to request
      --base-url URL            Endpoint base URL, ending in /v1
  -t, --timeout SECONDS         Per-request timeout (default 30)
      --history N               Messages kept in the history (default 50)
      --no-stream               Wait for complete replies instead of streaming
  -c, --config PATH             Configuration file (default ~/.promptline/config.toml)
      --plain                   Use the line-oriented chat instead of the full screen
  -v, --verbose                 Log diagnostics to stderr

Environment:
  PROMPTLINE_API_KEY            API key (falls back to OPENAI_API_KEY)
  PROMPTLINE_API_BASE           Base URL (falls back to OPENAI_API_BASE)
  PROMPTLINE_MODEL              Model name
  PROMPTLINE_TIMEOUT            Timeout in seconds
  PROMPTLINE_HISTORY            History cap
  PROMPTLINE_DEBUG              Write a debug log to ~/.promptline/debug.log
  NO_COLOR                      Disable colors

A .env file in the working directory is read before the environment.

Full-screen keys:
  Enter send   Esc cancel   Ctrl+L clear   PgUp/PgDn scroll   Ctrl+C quit
`

var (
	boolFlags  = []string{"no-stream", "plain", "verbose", "v", "help", "h", "version"}
	knownFlags = append([]string{"model", "m", "base-url", "timeout", "t", "history", "config", "c"}, boolFlags...)
)

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "promptline %s\n", Version)
	fmt.Fprintf(w, "  commit:  %s\n", GitCommit)
	fmt.Fprintf(w, "  built:   %s\n", BuildDate)
	fmt.Fprintf(w, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses the command line (without the program name).
func Parse(argv []string) (Command, Args, error) {
	p := NewArgParser(argv, boolFlags...)

	if unknown := p.Unknown(knownFlags...); len(unknown) > 0 {
		return CmdHelp, Args{}, usageErrorf("unknown flag: --%s", unknown[0])
	}

	args := Args{
		Model:      p.FirstFlag("model", "m"),
		BaseURL:    p.Flag("base-url"),
		NoStream:   p.BoolFlag("no-stream"),
		ConfigPath: p.FirstFlag("config", "c"),
		Plain:      p.BoolFlag("plain"),
		Verbose:    p.BoolFlag("verbose", "v"),
	}

	var err error
	if args.Timeout, err = positiveInt(p, "timeout", "t"); err != nil {
		return CmdHelp, args, err
	}
	if args.History, err = positiveInt(p, "history"); err != nil {
		return CmdHelp, args, err
	}

	if p.BoolFlag("help", "h") {
		return CmdHelp, args, nil
	}
	if p.BoolFlag("version") {
		return CmdVersion, args, nil
	}

	switch cmd := strings.ToLower(p.Subcommand()); cmd {
	case "", "tui":
		if args.Plain {
			return CmdChat, args, nil
		}
		return CmdTUI, args, nil

	case "chat":
		return CmdChat, args, nil

	case "ask":
		args.Query = strings.Join(p.PositionalFrom(1), " ")
		return CmdAsk, args, nil

	case "config":
		args.Subcommand = strings.ToLower(p.Positional(1))
		switch args.Subcommand {
		case "", "show", "path", "init":
			return CmdConfig, args, nil
		}
		return CmdHelp, args, usageErrorf("unknown config subcommand: %s", args.Subcommand)

	case "version":
		return CmdVersion, args, nil

	case "help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, usageErrorf("unknown command: %s", cmd)
	}
}

func positiveInt(p *ArgParser, names ...string) (int, error) {
	n, ok, err := p.FlagInt(names...)
	if err != nil {
		return 0, &UsageError{Reason: err.Error()}
	}
	if ok && n <= 0 {
		return 0, usageErrorf("--%s must be positive, got %d", names[0], n)
	}
	return n, nil
}

// ApplyArgs overlays command-line flags onto cfg and re-validates it.
// Flags take precedence over the file and the environment.
func ApplyArgs(cfg *config.Config, args Args) error {
	if args.Model != "" {
		cfg.API.Model = args.Model
	}
	if args.BaseURL != "" {
		cfg.API.BaseURL = args.BaseURL
	}
	if args.Timeout > 0 {
		cfg.API.TimeoutSecs = args.Timeout
	}
	if args.History > 0 {
		cfg.Chat.HistoryCap = args.History
	}
	if args.NoStream {
		cfg.API.Stream = false
	}
	return cfg.Validate()
}
