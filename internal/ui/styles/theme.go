// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styles used by the chat screen.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	Header      lipgloss.Style
	HeaderModel lipgloss.Style

	UserLabel lipgloss.Style
	BotLabel  lipgloss.Style
	UserText  lipgloss.Style
	BotText   lipgloss.Style
	ErrorText lipgloss.Style
	Draft     lipgloss.Style

	InputPrompt lipgloss.Style
	Footer      lipgloss.Style
	FooterKey   lipgloss.Style
	CharCount   lipgloss.Style
	Spinner     lipgloss.Style
	Divider     lipgloss.Style
}

// Spinner is the ASCII spinner shown while a request is in flight.
var Spinner = spinner.Spinner{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    time.Second / 10,
}

// NewTheme detects the terminal and builds a theme. mode is "auto", "dark"
// or "light"; anything else is treated as "auto".
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()
	if NoColor() {
		profile = termenv.Ascii
	}

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}

	lipgloss.SetColorProfile(profile)
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{IsDark: isDark, ColorProfile: profile}
	t.initStyles()
	return t
}

// NoColor reports whether the NO_COLOR convention is in effect.
func NoColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// GlamourStyle returns the glamour standard style name matching the theme.
func (t *Theme) GlamourStyle() string {
	switch {
	case t.ColorProfile == termenv.Ascii:
		return "notty"
	case t.IsDark:
		return "dark"
	default:
		return "light"
	}
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Padding(0, 1)
	t.HeaderModel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(UserLabelFg)
	t.BotLabel = lipgloss.NewStyle().Bold(true).Foreground(BotLabelFg)
	t.UserText = lipgloss.NewStyle().Foreground(TextPrimary)
	t.BotText = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ErrorText = lipgloss.NewStyle().Foreground(ErrorFg)
	t.Draft = lipgloss.NewStyle().Foreground(TextSecondary)

	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Footer = lipgloss.NewStyle().Foreground(TextMuted)
	t.FooterKey = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true)
	t.CharCount = lipgloss.NewStyle().Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(Amber)
	t.Divider = lipgloss.NewStyle().Foreground(Overlay)
}
