package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlieNuckel/tunarr/internal/api"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, api.Version, strings.TrimSpace(out.String()))
}

func TestRunRequiresBackendURL(t *testing.T) {
	t.Setenv("SLSKD_URL", "")
	t.Setenv("CONFIG_DIR", t.TempDir())

	root := newRootCommand()
	root.SetArgs([]string{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLSKD_URL is required")
}
