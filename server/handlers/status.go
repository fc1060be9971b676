package handlers

import (
	"net/http"

	"github.com/nomis52/clubsignup/server/types"
)

// PropertiesProvider provides metadata about the running server.
type PropertiesProvider interface {
	Properties() types.ServerProperties
}

// StatusHandler returns the server's build and runtime properties.
type StatusHandler struct {
	provider PropertiesProvider
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(provider PropertiesProvider) *StatusHandler {
	return &StatusHandler{provider: provider}
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Properties())
}
