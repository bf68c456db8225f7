package scene_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigour-dev/rigour/internal/scene"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseYAML_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantCount int
		wantErr   bool
	}{
		{
			name: "bare list",
			yaml: `
- title: First
  description: first scene
- title: Second
  description: second scene
`,
			wantCount: 2,
		},
		{
			name: "single object",
			yaml: `
title: Only
description: the only scene
priority: high
`,
			wantCount: 1,
		},
		{
			name: "wrapped list",
			yaml: `
scenes:
  - title: Wrapped
    description: inside a wrapper
    tags: [auth]
`,
			wantCount: 1,
		},
		{
			name:    "scalar document",
			yaml:    `"just a string"`,
			wantErr: true,
		},
		{
			name:    "empty object",
			yaml:    `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenes, err := scene.ParseYAML([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, scenes, tt.wantCount)
			for _, s := range scenes {
				assert.NotEmpty(t, s.ID, "every parsed scene gets a generated ID")
				assert.NoError(t, s.Validate())
			}
		})
	}
}

func TestParseYAML_DefaultsApplied(t *testing.T) {
	scenes, err := scene.ParseYAML([]byte("title: t\ndescription: d\n"))
	require.NoError(t, err)
	require.Len(t, scenes, 1)

	s := scenes[0]
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, scene.PriorityMedium, s.Priority)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestParseYAML_ExplicitIDPreserved(t *testing.T) {
	scenes, err := scene.ParseYAML([]byte("id: my-scene\ntitle: t\ndescription: d\n"))
	require.NoError(t, err)
	require.Len(t, scenes, 1)
	assert.Equal(t, "my-scene", scenes[0].ID)
}

func TestParseYAML_FullScene(t *testing.T) {
	doc := `
title: Login
description: User logs in
actor:
  role: user
  auth:
    type: bearer
    value: tok-1
steps:
  - action: POST /login
    input:
      username: alice
    expect: token returned
assertions:
  - type: status_code
    target: response
    expected: 200
  - type: body_contains
    target: response
    expected: access_token
edge_cases:
  - empty password
tags: [auth]
priority: critical
`
	scenes, err := scene.ParseYAML([]byte(doc))
	require.NoError(t, err)
	require.Len(t, scenes, 1)

	s := scenes[0]
	assert.Equal(t, scene.PriorityCritical, s.Priority)
	require.NotNil(t, s.Actor)
	require.NotNil(t, s.Actor.Auth)
	assert.Equal(t, "bearer", s.Actor.Auth.Type)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, "alice", s.Steps[0].Input["username"])
	require.Len(t, s.Assertions, 2)
	assert.Equal(t, scene.AssertStatusCode, s.Assertions[0].Type)
}

func TestParseYAMLFile(t *testing.T) {
	path := writeTempYAML(t, "- title: t\n  description: d\n")
	scenes, err := scene.ParseYAMLFile(path)
	require.NoError(t, err)
	assert.Len(t, scenes, 1)
}

func TestParseYAMLFile_NotFound(t *testing.T) {
	_, err := scene.ParseYAMLFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseGherkin(t *testing.T) {
	text := `
Scenario: Successful login
Given a registered user
When the user submits valid credentials
And the session is created
Then the response contains an access token
And the dashboard is shown
`
	s, err := scene.ParseGherkin(text)
	require.NoError(t, err)

	assert.Equal(t, "Successful login", s.Title)
	assert.NotEmpty(t, s.ID)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, "the user submits valid credentials", s.Steps[0].Action)
	require.Len(t, s.Assertions, 2)
	assert.Equal(t, scene.AssertSemantic, s.Assertions[0].Type)
	assert.Equal(t, "the response contains an access token", s.Assertions[0].Expected)
	assert.Contains(t, s.Description, "a registered user")
}

func TestParseGherkin_NoStructure(t *testing.T) {
	_, err := scene.ParseGherkin("this is not gherkin at all")
	assert.Error(t, err)
}
