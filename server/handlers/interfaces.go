// Package handlers provides HTTP handlers for the clubsignup web front.
//
// Each handler is in its own file and implements http.Handler.
// Page handlers find the caller's page through the session in the request
// context; the rest use small provider interfaces to reach server state.
package handlers

import (
	"github.com/nomis52/clubsignup/config"
	"github.com/nomis52/clubsignup/logging"
)

// ConfigProvider provides access to the current configuration.
type ConfigProvider interface {
	Config() *config.Config
}

// DiagnosticsProvider provides access to captured client diagnostics.
type DiagnosticsProvider interface {
	Diagnostics() map[string][]logging.LogEntry
}
