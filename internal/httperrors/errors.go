// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors explains transport failures to the user.
package httperrors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"insightst/cli/internal/logging"
	"insightst/cli/internal/pipeline"
)

// Category is the broad cause of a failed call.
type Category int

const (
	Other Category = iota
	Timeout
	DNS
	Refused
	TLS
	Server
)

// Classify inspects err, which may wrap a *pipeline.StatusError or a net error.
func Classify(err error) Category {
	if err == nil {
		return Other
	}
	var se *pipeline.StatusError
	if errors.As(err, &se) {
		if se.StatusCode >= 500 {
			return Server
		}
		return Other
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Refused
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "deadline exceeded"), strings.Contains(lower, "timeout"):
		return Timeout
	case strings.Contains(lower, "connection refused"):
		return Refused
	case strings.Contains(lower, "tls"), strings.Contains(lower, "certificate"), strings.Contains(lower, "handshake"):
		return TLS
	}
	return Other
}

// FormatNetworkError prints a friendly explanation of err while doing action
// against host, and returns err wrapped for logging.
func FormatNetworkError(w io.Writer, err error, action, host string) error {
	if err == nil {
		return nil
	}
	render(w, Classify(err), action, host, err)
	return fmt.Errorf("network error: %w", err)
}

func render(w io.Writer, c Category, action, host string, err error) {
	p := pterm.DefaultBasicText.WithWriter(w)
	line := func(s string) { p.Println(s) }

	switch c {
	case Timeout:
		line(fmt.Sprintf("⏱️  %s timed out while %s", host, action))
		line("The service took too long to respond. Try again, or raise request_timeout_seconds in the config.")
	case DNS:
		line(fmt.Sprintf("🌐 Cannot resolve %s while %s", host, action))
		line("Check your network connection and the base_url setting.")
	case Refused:
		line(fmt.Sprintf("🚫 Connection to %s refused while %s", host, action))
		line("Is the insights service running? Check base_url or INSIGHTST_BASE_URL.")
	case TLS:
		line(fmt.Sprintf("🔒 Secure connection to %s failed while %s", host, action))
		line("Check the server certificate, any HTTPS proxy, and your system clock.")
	case Server:
		line(fmt.Sprintf("⚠️  The insights service failed while %s", action))
		line("This is not a problem with your setup. Please try again in a few minutes.")
	default:
		line(fmt.Sprintf("❌ Cannot reach the insights service at %s while %s", host, action))
		if err != nil {
			details := logging.Mask(err.Error())
			if len(details) > 100 {
				details = details[:100] + "..."
			}
			line("Details: " + details)
		}
	}
}

// HostOf returns the host part of rawURL, or "server" when there is none.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
