package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "demo")
	assert.Contains(t, names, "generate")
}

func TestRunDemo_ValidatesCalls(t *testing.T) {
	require.Error(t, runDemo(0, 0, false))
}

func TestRunDemo_CompletesUnderLimits(t *testing.T) {
	// Two calls per phase stay inside every window, so the demo
	// finishes without waiting out a full second.
	require.NoError(t, runDemo(2, 0, false))
}
