// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/promptline/internal/config"
)

// RunConfig handles "config show", "config path" and "config init".
// path is the configuration file in use; cfg is the effective
// configuration after environment and flag overrides.
func RunConfig(cfg *config.Config, path, sub string, out io.Writer) error {
	switch sub {
	case "", "show":
		fmt.Fprintf(out, "# effective configuration (file: %s)\n", path)
		if err := toml.NewEncoder(out).Encode(cfg.Redacted()); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil

	case "path":
		fmt.Fprintln(out, path)
		return nil

	case "init":
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := config.SaveTOML(config.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
		return nil

	default:
		return usageErrorf("unknown config subcommand: %s", sub)
	}
}

// ResolveConfigPath returns the explicit path or the default location.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return config.ConfigPath()
}
