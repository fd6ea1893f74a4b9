// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the structured logger used by library packages,
// secret masking for anything that may end up in a log line, and error
// presentation for the terminal.
package logging

import "regexp"

var (
	reSecret = regexp.MustCompile(`(?i)("?(?:password|secret)"?\s*[=:]\s*"?)([^\s;",}]+)`)
	reToken  = regexp.MustCompile(`(?i)(token=|bearer\s+|"access_token"\s*:\s*")([A-Za-z0-9._~+/=-]+)`)
	reAPIKey = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s;]+)`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = reSecret.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	return out
}

// MaskToken keeps a short prefix of a bearer token for correlation.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "***"
}
