// Package types provides shared types for the server package and its subpackages.
package types

import (
	"time"

	"github.com/nomis52/clubsignup/buildinfo"
)

// ServerProperties holds metadata about the running web front.
type ServerProperties struct {
	Build      buildinfo.Properties `json:"build"`
	StartedAt  time.Time            `json:"started_at"`
	Hostname   string               `json:"hostname"`
	BackendURL string               `json:"backend_url"`
	Sessions   int                  `json:"sessions"`
}
