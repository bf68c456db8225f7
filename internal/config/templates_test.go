package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigour-dev/rigour/internal/config"
)

func TestListTemplates(t *testing.T) {
	names, err := config.ListTemplates()
	require.NoError(t, err)
	assert.Contains(t, names, "default")
}

func TestTemplateExists(t *testing.T) {
	assert.True(t, config.TemplateExists("default"))
	assert.False(t, config.TemplateExists("nope"))
}

func TestRenderTemplate_Default(t *testing.T) {
	dir := t.TempDir()

	created, err := config.RenderTemplate("default", dir, config.TemplateVars{
		ProjectName: "shop-api",
		BaseURL:     "http://localhost:9000",
		Environment: "local",
	}, false)
	require.NoError(t, err)
	assert.NotEmpty(t, created)

	tomlBytes, err := os.ReadFile(filepath.Join(dir, "rigour.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(tomlBytes), `name = "shop-api"`)
	assert.Contains(t, string(tomlBytes), `environment = "local"`)

	connBytes, err := os.ReadFile(filepath.Join(dir, "connection.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(connBytes), "http://localhost:9000")

	scenesBytes, err := os.ReadFile(filepath.Join(dir, "scenes", "example_scenes.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(scenesBytes), "Health check")
}

func TestRenderTemplate_SkipsExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "rigour.toml")
	require.NoError(t, os.WriteFile(existing, []byte("# mine\n"), 0o644))

	_, err := config.RenderTemplate("default", dir, config.TemplateVars{ProjectName: "x"}, false)
	require.NoError(t, err)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(content))
}

func TestRenderTemplate_ForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "rigour.toml")
	require.NoError(t, os.WriteFile(existing, []byte("# mine\n"), 0o644))

	_, err := config.RenderTemplate("default", dir, config.TemplateVars{ProjectName: "x"}, true)
	require.NoError(t, err)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Contains(t, string(content), `name = "x"`)
}

func TestRenderTemplate_UnknownTemplate(t *testing.T) {
	_, err := config.RenderTemplate("missing", t.TempDir(), config.TemplateVars{}, false)
	assert.Error(t, err)
}
