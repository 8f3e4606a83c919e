// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/promptline/internal/config"
	"github.com/jeranaias/promptline/internal/session"
)

func TestRunAsk_Reply(t *testing.T) {
	sess := session.New(replyTo(), session.Options{})
	var out, errOut bytes.Buffer

	require.NoError(t, RunAsk(sess, "why", &out, &errOut, AskOptions{}))
	assert.Equal(t, "re: why\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunAsk_BlankQuestion(t *testing.T) {
	sess := session.New(replyTo(), session.Options{})
	err := RunAsk(sess, "  ", &bytes.Buffer{}, &bytes.Buffer{}, AskOptions{})
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestRunAsk_FailureExitsNonZero(t *testing.T) {
	c := session.CompleterFunc(func(context.Context, string, func(string)) (string, error) {
		return "", fmt.Errorf("dial: refused")
	})
	sess := session.New(c, session.Options{})
	var out, errOut bytes.Buffer

	err := RunAsk(sess, "q", &out, &errOut, AskOptions{Stream: true})
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, ExitGeneralError, ExitCode(err))
	assert.Contains(t, errOut.String(), session.FailureText)
	assert.Empty(t, out.String())
}

func TestReadQuery(t *testing.T) {
	q, err := ReadQuery(Args{Query: "from args"}, strings.NewReader("ignored"), false)
	require.NoError(t, err)
	assert.Equal(t, "from args", q)

	q, err = ReadQuery(Args{}, strings.NewReader("from stdin\n"), false)
	require.NoError(t, err)
	assert.Equal(t, "from stdin\n", q)

	q, err = ReadQuery(Args{}, strings.NewReader("unused"), true)
	require.NoError(t, err)
	assert.Empty(t, q)
}

// TestAsk_AgainstServer drives the whole stack built from config: flags,
// client, completer and session.
func TestAsk_AgainstServer(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"42"}}]}`)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.API.Key = "sk-test"
	require.NoError(t, ApplyArgs(cfg, Args{BaseURL: srv.URL, Model: "tiny", NoStream: true}))

	sess := NewSession(context.Background(), cfg)
	var out bytes.Buffer
	require.NoError(t, RunAsk(sess, "meaning?", &out, &bytes.Buffer{}, AskOptions{}))

	assert.Equal(t, "42\n", out.String())
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "tiny", gotBody["model"])
	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "meaning?"}, msgs[0])
}

func TestRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := config.Default()
	cfg.API.Key = "sk-secret"

	var out bytes.Buffer
	require.NoError(t, RunConfig(cfg, path, "show", &out))
	assert.Contains(t, out.String(), "REDACTED")
	assert.NotContains(t, out.String(), "sk-secret")

	out.Reset()
	require.NoError(t, RunConfig(cfg, path, "path", &out))
	assert.Equal(t, path+"\n", out.String())

	require.NoError(t, RunConfig(cfg, path, "init", &bytes.Buffer{}))
	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.Error(t, RunConfig(cfg, path, "init", &bytes.Buffer{}), "init refuses to overwrite")

	assert.Equal(t, ExitUsageError, ExitCode(RunConfig(cfg, path, "nope", &bytes.Buffer{})))
}
