// promptline - a minimal terminal chat client for OpenAI-compatible endpoints.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/promptline/internal/cli"
	"github.com/jeranaias/promptline/internal/config"
	"github.com/jeranaias/promptline/internal/ui/chat"
	"github.com/jeranaias/promptline/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		cli.PrintUsage(os.Stderr)
		return cli.ExitCode(err)
	}

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return cli.ExitSuccess
	}

	cfgPath, err := cli.ResolveConfigPath(args.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitConfigError
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitConfigError
	}
	if err := cli.ApplyArgs(cfg, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCode(err)
	}

	closeLog := setupLogging(cmd, args)
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cmd == cli.CmdTUI && !cli.IsInteractive() {
		log.Printf("main: no terminal, falling back to line chat")
		cmd = cli.CmdChat
	}
	if (cmd == cli.CmdChat || cmd == cli.CmdAsk) && cfg.API.Key == "" {
		fmt.Fprintf(os.Stderr, "Warning: no API key set; export %s or %s.\n", config.EnvAPIKey, config.EnvOpenAIAPIKey)
	}

	switch cmd {
	case cli.CmdConfig:
		err = cli.RunConfig(cfg, cfgPath, args.Subcommand, os.Stdout)

	case cli.CmdAsk:
		err = cli.HandleAsk(cli.NewSession(ctx, cfg), args, cli.AskOptions{
			Stream:   cfg.API.Stream,
			Markdown: cfg.UI.Markdown && cli.ColorsEnabled(),
			Width:    cli.GetTerminalWidth(),
		})

	case cli.CmdChat:
		err = cli.HandleChat(cli.NewSession(ctx, cfg), cli.ChatOptions{
			Stream:   cfg.API.Stream,
			Markdown: cfg.UI.Markdown && cli.ColorsEnabled(),
			Width:    cli.GetTerminalWidth(),
		})

	default:
		err = runTUI(ctx, cfg, cfgPath, args)
	}

	if err != nil {
		if !errors.Is(err, cli.ErrRequestFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return cli.ExitCode(err)
	}
	return cli.ExitSuccess
}

// setupLogging routes the standard logger. PROMPTLINE_DEBUG writes to a file
// in the config directory; --verbose writes to stderr outside the full
// screen; otherwise logs are discarded.
func setupLogging(cmd cli.Command, args cli.Args) func() {
	if config.DebugEnabled() {
		f, err := openDebugLog()
		if err == nil {
			return func() { f.Close() }
		}
		fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
	}

	if args.Verbose && cmd != cli.CmdTUI {
		log.SetOutput(os.Stderr)
		log.SetPrefix("promptline ")
		return func() {}
	}

	log.SetOutput(io.Discard)
	return func() {}
}

func openDebugLog() (*os.File, error) {
	if err := config.EnsureConfigDir(); err != nil {
		return nil, err
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return tea.LogToFile(filepath.Join(dir, "debug.log"), "promptline")
}

// runTUI starts the full-screen interface.
func runTUI(ctx context.Context, cfg *config.Config, cfgPath string, args cli.Args) error {
	sess := cli.NewSession(ctx, cfg)

	send := func(msg tea.Msg) {
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(msg)
		}
	}

	m := chat.New(sess, chat.Options{
		Theme:        styles.NewTheme(cfg.UI.Theme),
		ModelName:    cfg.API.Model,
		Debounce:     cfg.Debounce(),
		Markdown:     cfg.UI.Markdown,
		Send:         send,
		NewCompleter: cli.NewCompleter,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	startConfigWatcher(ctx, cfgPath, args, send)

	_, err := p.Run()
	return err
}

// startConfigWatcher reloads the config file while the program runs.
// Command-line flags are re-applied so they keep precedence.
func startConfigWatcher(ctx context.Context, cfgPath string, args cli.Args, send func(tea.Msg)) {
	if args.ConfigPath == "" {
		if err := config.EnsureConfigDir(); err != nil {
			log.Printf("main: config dir unavailable, hot reload disabled: %v", err)
			return
		}
	}

	w, err := config.NewWatcher(cfgPath,
		func(c *config.Config) {
			if err := cli.ApplyArgs(c, args); err != nil {
				send(chat.ConfigErrorMsg{Err: err})
				return
			}
			send(chat.ConfigReloadedMsg{Config: c})
		},
		func(err error) {
			send(chat.ConfigErrorMsg{Err: err})
		},
	)
	if err != nil {
		log.Printf("main: hot reload disabled: %v", err)
		return
	}
	go w.Run(ctx)
}
