// cmd/rigup/root_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: The command surface stays small: two flags, a version
// subcommand, everything else rejected

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownFlagRejected(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--bogus"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestPositionalArgsRejected(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"provision-me"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestHelpFlag(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "rigup")
	assert.Contains(t, out.String(), "--attended")
}

func TestAttendedFlagParses(t *testing.T) {
	cmd := NewRootCmd()
	flag := cmd.Flags().Lookup("attended")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue, "unattended is the default mode")
}

func TestVersionSubcommandRegistered(t *testing.T) {
	cmd := NewRootCmd()
	sub, _, err := cmd.Find([]string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "version", sub.Name())
}
