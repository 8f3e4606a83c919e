// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"log"

	"github.com/jeranaias/promptline/internal/cloud"
	"github.com/jeranaias/promptline/internal/config"
	"github.com/jeranaias/promptline/internal/session"
)

// NewClient builds the completion client described by cfg.
func NewClient(cfg *config.Config) *cloud.Client {
	client := cloud.NewClient(cfg.API.Key).
		WithBaseURL(cfg.API.BaseURL).
		WithModel(cfg.API.Model).
		WithMaxRetries(cfg.API.MaxRetries).
		WithRateLimit(cfg.API.RequestsPerMinute)

	if client.IsConfigured() {
		log.Printf("cli: client %s model=%s key=%s", client.BaseURL(), client.Model(), client.KeyFingerprint())
	} else {
		log.Printf("cli: client %s model=%s without API key", client.BaseURL(), client.Model())
	}
	return client
}

// NewCompleter builds the session completer described by cfg.
func NewCompleter(cfg *config.Config) session.Completer {
	return session.NewCloudCompleter(NewClient(cfg), cfg.API.Stream)
}

// NewSession builds a session with cfg's timeout and history cap.
func NewSession(ctx context.Context, cfg *config.Config) *session.Session {
	return session.New(NewCompleter(cfg), session.Options{
		Timeout:    cfg.Timeout(),
		HistoryCap: cfg.Chat.HistoryCap,
		Parent:     ctx,
	})
}
