package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigour-dev/rigour/internal/config"
)

func TestValidate_DefaultsHaveNoErrors(t *testing.T) {
	vr := config.Validate(config.NewDefaults(), nil)
	assert.False(t, vr.HasErrors(), "issues: %+v", vr.Issues)
}

func TestValidate_NilConfig(t *testing.T) {
	vr := config.Validate(nil, nil)
	assert.True(t, vr.HasErrors())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*config.Config)
		wantField string
	}{
		{
			name:      "negative max_edge_cases",
			mutate:    func(c *config.Config) { c.Pipeline.MaxEdgeCases = -1 },
			wantField: "pipeline.max_edge_cases",
		},
		{
			name:      "negative timeout",
			mutate:    func(c *config.Config) { c.Executor.TimeoutSeconds = -5 },
			wantField: "executor.timeout",
		},
		{
			name:      "negative workers",
			mutate:    func(c *config.Config) { c.Executor.Workers = -1 },
			wantField: "executor.workers",
		},
		{
			name:      "empty command part",
			mutate:    func(c *config.Config) { c.Executor.Command = []string{"python3", ""} },
			wantField: "executor.command[1]",
		},
		{
			name:      "suffix without dot",
			mutate:    func(c *config.Config) { c.Executor.ArtifactSuffix = "py" },
			wantField: "executor.artifact_suffix",
		},
		{
			name:      "bad effort",
			mutate:    func(c *config.Config) { c.Oracle.Effort = "maximum" },
			wantField: "oracle.effort",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaults()
			tt.mutate(cfg)

			vr := config.Validate(cfg, nil)
			require.True(t, vr.HasErrors())
			assert.Equal(t, tt.wantField, vr.Errors()[0].Field)
		})
	}
}

func TestValidate_MissingDirsAreWarnings(t *testing.T) {
	cfg := config.NewDefaults()
	cfg.Project.ScenesDir = "/definitely/not/there"
	cfg.Project.ConnectionFile = "/also/not/there.yaml"

	vr := config.Validate(cfg, nil)
	assert.False(t, vr.HasErrors())
	assert.Len(t, vr.Warnings(), 2)
}
