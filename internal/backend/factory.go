// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"insightst/cli/internal/manifest"
	"insightst/cli/internal/pipeline"
)

// New creates the HTTP API implementation on top of a configured pipeline.
func New(pl *pipeline.Client, endpoints manifest.HTTPEndpoints) API {
	return newHTTP(pl, endpoints)
}
