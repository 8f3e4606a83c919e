// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestNewTheme_ForcedModes(t *testing.T) {
	assert.True(t, NewTheme("dark").IsDark)
	assert.False(t, NewTheme("LIGHT").IsDark)
}

func TestNewTheme_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	th := NewTheme("dark")
	assert.Equal(t, termenv.Ascii, th.ColorProfile)
	assert.Equal(t, "notty", th.GlamourStyle())
	assert.Equal(t, "You", th.UserLabel.Render("You"))
}

func TestGlamourStyle(t *testing.T) {
	th := &Theme{IsDark: true, ColorProfile: termenv.TrueColor}
	assert.Equal(t, "dark", th.GlamourStyle())
	th.IsDark = false
	assert.Equal(t, "light", th.GlamourStyle())
}

func TestSpinnerFramesAreASCII(t *testing.T) {
	for _, f := range Spinner.Frames {
		for _, r := range f {
			assert.Less(t, r, rune(128))
		}
	}
}
