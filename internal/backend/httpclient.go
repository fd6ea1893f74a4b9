// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"insightst/cli/internal/manifest"
	"insightst/cli/internal/pipeline"
)

// HTTP implements API over the service's REST endpoints.
type HTTP struct {
	// pl sends every request; it owns credential injection and rejection handling.
	pl *pipeline.Client
	// endpoints contains the URL paths for the auth routes
	endpoints manifest.HTTPEndpoints
}

func newHTTP(pl *pipeline.Client, endpoints manifest.HTTPEndpoints) *HTTP {
	return &HTTP{pl: pl, endpoints: endpoints}
}
