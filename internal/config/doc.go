// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for promptline.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - APIConfig: Completion endpoint, key, model, timeout, retries
//   - ChatConfig: History cap and input debounce
//   - Watcher: Reloads the config file when it changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags
//   - Environment variables (PROMPTLINE_*, with OPENAI_API_KEY and
//     OPENAI_API_BASE as fallbacks)
//   - .env in the working directory
//   - ~/.promptline/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := cloud.NewClient(cfg.API.Key).WithBaseURL(cfg.API.BaseURL)
package config
