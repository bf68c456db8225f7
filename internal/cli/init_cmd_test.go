package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigour-dev/rigour/internal/config"
)

// resetInitFlags resets init command flag state between tests.
func resetInitFlags(t *testing.T) {
	t.Helper()
	resetRootCmd(t)
	initName = ""
	initBaseURL = "http://localhost:8000"
	initEnv = "local"
	initForce = false
	initCmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
}

// runInit runs "rigour init <dir> [args...]" and returns the captured
// output and the exit code.
func runInitCmd(t *testing.T, dir string, args ...string) (string, int) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(append([]string{"init", dir}, args...))
	code := Execute()
	return buf.String(), code
}

func TestInitCmd_ScaffoldsProject(t *testing.T) {
	resetInitFlags(t)
	dir := t.TempDir()

	out, code := runInitCmd(t, dir, "--name", "orders-api")

	require.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, "rigour.toml"))
	assert.FileExists(t, filepath.Join(dir, "connection.yaml"))
	assert.FileExists(t, filepath.Join(dir, "scenes", "example_scenes.yaml"))
	assert.Contains(t, out, "orders-api")
	assert.Contains(t, out, "rigour run")
}

func TestInitCmd_RenderedTomlIsValid(t *testing.T) {
	resetInitFlags(t)
	dir := t.TempDir()

	_, code := runInitCmd(t, dir, "--name", "valid-toml-test")
	require.Equal(t, 0, code)

	var cfg config.Config
	_, err := toml.DecodeFile(filepath.Join(dir, "rigour.toml"), &cfg)
	require.NoError(t, err, "rendered rigour.toml must be valid TOML")
	assert.Equal(t, "valid-toml-test", cfg.Project.Name)

	// No unresolved template syntax may remain.
	raw, err := os.ReadFile(filepath.Join(dir, "rigour.toml"))
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "{{"))
}

func TestInitCmd_BaseURLAndEnvLandInConnectionFile(t *testing.T) {
	resetInitFlags(t)
	dir := t.TempDir()

	_, code := runInitCmd(t, dir,
		"--name", "conn-test",
		"--base-url", "https://api.example.com",
		"--env", "staging",
	)
	require.Equal(t, 0, code)

	raw, err := os.ReadFile(filepath.Join(dir, "connection.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "https://api.example.com")
	assert.Contains(t, string(raw), "staging")
}

func TestInitCmd_NameDefaultsToDirectoryName(t *testing.T) {
	resetInitFlags(t)
	parent := t.TempDir()
	dir := filepath.Join(parent, "cool-project")
	require.NoError(t, os.Mkdir(dir, 0o755))

	_, code := runInitCmd(t, dir)
	require.Equal(t, 0, code)

	raw, err := os.ReadFile(filepath.Join(dir, "rigour.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "cool-project")
}

func TestInitCmd_ExistingConfig_NoForce(t *testing.T) {
	resetInitFlags(t)
	dir := t.TempDir()
	existing := filepath.Join(dir, "rigour.toml")
	require.NoError(t, os.WriteFile(existing, []byte("# original\n"), 0o644))

	var errBuf bytes.Buffer
	rootCmd.SetErr(&errBuf)
	_, code := runInitCmd(t, dir)

	assert.Equal(t, 1, code, "should fail when rigour.toml exists without --force")

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "# original\n", string(content),
		"existing rigour.toml must not be modified without --force")
}

func TestInitCmd_Force_Overwrites(t *testing.T) {
	resetInitFlags(t)
	dir := t.TempDir()
	existing := filepath.Join(dir, "rigour.toml")
	require.NoError(t, os.WriteFile(existing, []byte("# original\n"), 0o644))

	_, code := runInitCmd(t, dir, "--force", "--name", "forced-project")
	require.Equal(t, 0, code)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Contains(t, string(content), "forced-project")
	assert.NotContains(t, string(content), "# original")
}

func TestInitCmd_CreatesMissingDirectory(t *testing.T) {
	resetInitFlags(t)
	dir := filepath.Join(t.TempDir(), "brand", "new")

	_, code := runInitCmd(t, dir, "--name", "nested")

	require.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, "rigour.toml"))
}
