// Package buildinfo provides build-time properties injected via ldflags:
//
//	go build -ldflags "-X github.com/nomis52/clubsignup/buildinfo.version=1.2.0 \
//	  -X github.com/nomis52/clubsignup/buildinfo.gitCommit=$(git rev-parse --short HEAD)"
package buildinfo

import "fmt"

// Properties holds build-time properties injected via ldflags.
type Properties struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Package-level variables for ldflags injection (unexported).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Get returns the current build properties.
func Get() Properties {
	return Properties{
		Version:   version,
		BuildTime: buildTime,
		GitCommit: gitCommit,
	}
}

// Describe formats the properties for a --version flag.
func (p Properties) Describe(program string) string {
	return fmt.Sprintf("%s %s\nBuilt: %s\nCommit: %s\n", program, p.Version, p.BuildTime, p.GitCommit)
}
