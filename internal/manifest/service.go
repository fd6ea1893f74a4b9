// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"

	"insightst/cli/internal/config"
)

// GetEndpoints returns the endpoint table, using the RAM cache if available.
// Without a configured manifest URL the defaults for cfg.BaseURL are used.
func GetEndpoints(ctx context.Context, cfg config.Config) (*Manifest, error) {
	if cached := GetCached(); cached != nil {
		return cached, nil
	}

	if cfg.ManifestURL == "" {
		m := Default(cfg.BaseURL)
		SetCached(m)
		return m, nil
	}

	m, err := fetchFromServer(ctx, cfg.ManifestURL)
	if err != nil {
		return nil, formatServerError(cfg.ManifestURL, err)
	}
	if m.BaseURL == "" {
		m.BaseURL = cfg.BaseURL
	}
	SetCached(m)
	return m, nil
}

// formatServerError creates user-friendly error messages for manifest fetch failures.
func formatServerError(url string, err error) error {
	pterm.Error.Printf("Cannot load the endpoint manifest from %s\n", url)
	pterm.Println()
	pterm.Info.Println("Please check:")
	pterm.Println("  • Your internet connection")
	pterm.Println("  • The manifest_url setting in config.json")
	pterm.Println()

	return fmt.Errorf("manifest unavailable: %w", err)
}
