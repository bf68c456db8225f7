package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigour-dev/rigour/internal/buildinfo"
)

// resetVersionFlags resets the version command's local flag state between
// tests.
func resetVersionFlags(t *testing.T) {
	t.Helper()
	resetRootCmd(t)
	versionJSON = false
	versionCmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
}

func TestVersionCmd_HumanReadable(t *testing.T) {
	resetVersionFlags(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})

	code := Execute()

	assert.Equal(t, 0, code)
	out := buf.String()
	assert.Contains(t, out, "rigour v")
	assert.Contains(t, out, buildinfo.Version)
	assert.Contains(t, out, buildinfo.Commit)
}

func TestVersionCmd_JSONOutput(t *testing.T) {
	resetVersionFlags(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version", "--json"})

	code := Execute()
	require.Equal(t, 0, code)

	var info buildinfo.Info
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info),
		"JSON output should unmarshal to buildinfo.Info")
	assert.Equal(t, buildinfo.GetInfo(), info)
}

func TestVersionCmd_JSONFlag_Registered(t *testing.T) {
	flag := versionCmd.Flags().Lookup("json")
	require.NotNil(t, flag, "--json flag must be registered")
	assert.Equal(t, "false", flag.DefValue)
}
