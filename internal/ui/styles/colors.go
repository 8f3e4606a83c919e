// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PALETTE
// =============================================================================

// Accent colors.
var (
	Purple  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	Cyan    = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	Rose    = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
	Amber   = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
)

// Surfaces and text.
var (
	SurfaceDim    = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
	Overlay       = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
)

// Speaker labels.
var (
	UserLabelFg = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#93C5FD"}
	BotLabelFg  = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#C4B5FD"}
	ErrorFg     = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}
)

// StatusIndicators are ASCII markers shown next to colored text so state is
// readable without color.
var StatusIndicators = struct {
	Error   string
	Warning string
	Pending string
}{
	Error:   "[X]",
	Warning: "[!]",
	Pending: "[ ]",
}
