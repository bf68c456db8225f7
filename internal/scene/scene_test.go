package scene_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigour-dev/rigour/internal/scene"
)

func TestNew_Defaults(t *testing.T) {
	s := scene.New("Login", "User logs in with valid credentials")

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Login", s.Title)
	assert.Equal(t, scene.PriorityMedium, s.Priority)
	assert.False(t, s.CreatedAt.IsZero())
	assert.NotNil(t, s.Metadata)
}

func TestScene_IDStableAcrossMutation(t *testing.T) {
	s := scene.New("Login", "User logs in")
	id := s.ID
	require.NotEmpty(t, id)

	s.AddStep("POST /login", map[string]any{"username": "alice"}, "200 OK").
		AddAssertion(scene.AssertStatusCode, "response", 200, "").
		AddEdgeCase("empty password")
	s.Tags = append(s.Tags, "auth")

	assert.Equal(t, id, s.ID, "scene ID must not change when steps/assertions/tags are appended")
	assert.Len(t, s.Steps, 1)
	assert.Len(t, s.Assertions, 1)
	assert.Len(t, s.EdgeCases, 1)
}

func TestScene_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *scene.Scene)
		wantErr string
	}{
		{
			name:   "valid scene",
			mutate: func(s *scene.Scene) {},
		},
		{
			name:    "missing id",
			mutate:  func(s *scene.Scene) { s.ID = "" },
			wantErr: "missing id",
		},
		{
			name:    "missing title",
			mutate:  func(s *scene.Scene) { s.Title = "" },
			wantErr: "missing title",
		},
		{
			name:    "invalid priority",
			mutate:  func(s *scene.Scene) { s.Priority = "urgent" },
			wantErr: "invalid priority",
		},
		{
			name: "invalid assertion type",
			mutate: func(s *scene.Scene) {
				s.Assertions = append(s.Assertions, scene.Assertion{Type: "regex", Target: "response"})
			},
			wantErr: "invalid type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scene.New("Login", "User logs in")
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestScene_JSONRoundTrip(t *testing.T) {
	s := scene.NewBuilder("Checkout", "User completes a purchase").
		WithActor("user", "bearer", "tok-123", "Returning customer").
		WithPriority(scene.PriorityHigh).
		WithTags("commerce", "critical-path").
		WithStep("POST /checkout", map[string]any{"cart_id": "c-9"}, "order created").
		WithAssertion(scene.AssertStatusCode, "response", 201, "").
		WithAssertion(scene.AssertBodyContains, "response", "order_id", "").
		WithEdgeCase("checkout with empty cart").
		WithMetadata("suite", "smoke").
		Build()

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var back scene.Scene
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Title, back.Title)
	assert.Equal(t, s.Priority, back.Priority)
	assert.Equal(t, s.Tags, back.Tags)
	assert.Equal(t, s.EdgeCases, back.EdgeCases)
	require.Len(t, back.Steps, 1)
	assert.Equal(t, "POST /checkout", back.Steps[0].Action)
	require.Len(t, back.Assertions, 2)
	assert.Equal(t, scene.AssertStatusCode, back.Assertions[0].Type)
	require.NotNil(t, back.Actor)
	assert.Equal(t, "user", back.Actor.Role)
	require.NotNil(t, back.Actor.Auth)
	assert.Equal(t, "bearer", back.Actor.Auth.Type)
}
