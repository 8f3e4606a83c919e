// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringWidth(t *testing.T) {
	assert.Equal(t, 5, StringWidth("hello"))
	assert.Equal(t, 4, StringWidth("日本"))
	assert.Equal(t, 0, StringWidth(""))
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"wide runes", "日本語テキスト", 7, "日本..."},
		{"tiny", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateWidth(tc.input, tc.width)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, StringWidth(got), max(tc.width, 0))
		})
	}
}

func TestWrapWidth(t *testing.T) {
	got := WrapWidth("the quick brown fox jumps over the lazy dog", 10)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, StringWidth(line), 10, "line %q too wide", line)
	}
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", strings.Join(strings.Fields(got), " "))
}

func TestWrapWidth_KeepsLineBreaks(t *testing.T) {
	assert.Equal(t, "a\nb", WrapWidth("a\nb", 10))
}

func TestWrapWidth_LongWord(t *testing.T) {
	got := WrapWidth("abcdefghijkl", 5)
	assert.Equal(t, "abcde\nfghij\nkl", got)
}

func TestWrapWidth_NoWidth(t *testing.T) {
	assert.Equal(t, "unchanged text", WrapWidth("unchanged text", 0))
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.toml")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0600))
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should be cleaned up")
}
