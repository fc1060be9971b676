package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_Defaults(t *testing.T) {
	props := Get()
	assert.Equal(t, "dev", props.Version)
	assert.Equal(t, "unknown", props.BuildTime)
	assert.Equal(t, "unknown", props.GitCommit)
}

func TestProperties_Describe(t *testing.T) {
	p := Properties{Version: "1.2.0", BuildTime: "2026-10-19T10:00:00Z", GitCommit: "abc123"}
	assert.Equal(t, "clubsignup-cli 1.2.0\nBuilt: 2026-10-19T10:00:00Z\nCommit: abc123\n", p.Describe("clubsignup-cli"))
}
