// Package scene defines the declarative test-scenario model: a Scene
// describes who performs a test (Actor), what happens (Steps), what must
// hold afterwards (Assertions), and hints for edge-case exploration.
// Scenes enter the pipeline from YAML files, Gherkin text, or natural
// language parsed by the reasoning oracle.
package scene

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority represents the importance level of a scene.
type Priority string

const (
	// PriorityCritical marks scenes that guard core business flows.
	PriorityCritical Priority = "critical"

	// PriorityHigh marks scenes that should run in every cycle.
	PriorityHigh Priority = "high"

	// PriorityMedium is the default priority for unmarked scenes.
	PriorityMedium Priority = "medium"

	// PriorityLow marks scenes that are safe to defer.
	PriorityLow Priority = "low"
)

// validPriorities is the set of all known Priority values.
var validPriorities = map[Priority]bool{
	PriorityCritical: true,
	PriorityHigh:     true,
	PriorityMedium:   true,
	PriorityLow:      true,
}

// AssertionType identifies the kind of check an Assertion performs.
type AssertionType string

const (
	AssertStatusCode     AssertionType = "status_code"
	AssertBodyContains   AssertionType = "body_contains"
	AssertBodySchema     AssertionType = "body_schema"
	AssertDBState        AssertionType = "db_state"
	AssertResponseTime   AssertionType = "response_time"
	AssertHeaderContains AssertionType = "header_contains"
	AssertSemantic       AssertionType = "semantic"
	AssertCustom         AssertionType = "custom"
)

// validAssertionTypes is the set of all known AssertionType values.
var validAssertionTypes = map[AssertionType]bool{
	AssertStatusCode:     true,
	AssertBodyContains:   true,
	AssertBodySchema:     true,
	AssertDBState:        true,
	AssertResponseTime:   true,
	AssertHeaderContains: true,
	AssertSemantic:       true,
	AssertCustom:         true,
}

// AuthConfig describes how an actor authenticates against the target system.
type AuthConfig struct {
	// Type is the auth scheme: bearer, basic, api_key, or oauth.
	Type string `json:"type" yaml:"type"`

	// Value is the token or API key for bearer/api_key schemes.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	Username     string `json:"username,omitempty" yaml:"username,omitempty"`
	Password     string `json:"password,omitempty" yaml:"password,omitempty"`
	ClientID     string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
}

// Actor represents the user or client performing actions in a scene.
type Actor struct {
	// Role is the actor role: admin, user, anonymous, api_client.
	Role string `json:"role" yaml:"role"`

	// Auth is the actor's authentication configuration, when any.
	Auth *AuthConfig `json:"auth,omitempty" yaml:"auth,omitempty"`

	// Persona is a natural-language description of this actor.
	Persona string `json:"persona,omitempty" yaml:"persona,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Step is a single action within a test scenario: an HTTP request, a UI
// interaction, or a delay.
type Step struct {
	// Action describes what to do, e.g. "POST /login".
	Action string `json:"action" yaml:"action"`

	// Input carries data for the step: query params, request body, etc.
	Input map[string]any `json:"input,omitempty" yaml:"input,omitempty"`

	// Expect is the expected outcome of this step, in prose.
	Expect string `json:"expect,omitempty" yaml:"expect,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Assertion is an expected outcome checked after the scene's steps ran.
type Assertion struct {
	Type AssertionType `json:"type" yaml:"type"`

	// Target names what the assertion inspects: response, DB, a header.
	Target string `json:"target" yaml:"target"`

	// Expected is the expected value or condition.
	Expected any `json:"expected,omitempty" yaml:"expected,omitempty"`

	// SemanticPrompt is a custom oracle prompt for semantic assertions.
	SemanticPrompt string `json:"semantic_prompt,omitempty" yaml:"semantic_prompt,omitempty"`

	// Tolerance is the allowed deviation for numeric assertions such as
	// response_time.
	Tolerance float64 `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Scene is a test scenario described in structured or natural language.
//
// ID is assigned at creation and must never change afterwards; steps,
// assertions, edge-case hints, and tags may be appended freely on an owned
// instance via the Add* methods.
type Scene struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Actor       *Actor         `json:"actor,omitempty" yaml:"actor,omitempty"`
	Steps       []Step         `json:"steps,omitempty" yaml:"steps,omitempty"`
	Assertions  []Assertion    `json:"assertions,omitempty" yaml:"assertions,omitempty"`
	EdgeCases   []string       `json:"edge_cases,omitempty" yaml:"edge_cases,omitempty"`
	Tags        []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Priority    Priority       `json:"priority" yaml:"priority"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// New creates a Scene with a generated UUID, the default medium priority,
// and the current creation timestamp.
func New(title, description string) *Scene {
	return &Scene{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Priority:    PriorityMedium,
		CreatedAt:   time.Now().UTC(),
		Metadata:    map[string]any{},
	}
}

// AddStep appends a step and returns the scene for chaining.
func (s *Scene) AddStep(action string, input map[string]any, expect string) *Scene {
	s.Steps = append(s.Steps, Step{Action: action, Input: input, Expect: expect})
	return s
}

// AddAssertion appends an assertion and returns the scene for chaining.
func (s *Scene) AddAssertion(typ AssertionType, target string, expected any, semanticPrompt string) *Scene {
	s.Assertions = append(s.Assertions, Assertion{
		Type:           typ,
		Target:         target,
		Expected:       expected,
		SemanticPrompt: semanticPrompt,
	})
	return s
}

// AddEdgeCase appends an edge-case hint and returns the scene for chaining.
func (s *Scene) AddEdgeCase(description string) *Scene {
	s.EdgeCases = append(s.EdgeCases, description)
	return s
}

// Validate checks that the scene has an ID, a title, a known priority, and
// known assertion types.
func (s *Scene) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("scene: missing id")
	}
	if s.Title == "" {
		return fmt.Errorf("scene %s: missing title", s.ID)
	}
	if !validPriorities[s.Priority] {
		return fmt.Errorf("scene %s: invalid priority %q: must be one of critical, high, medium, low", s.ID, s.Priority)
	}
	for i, a := range s.Assertions {
		if !validAssertionTypes[a.Type] {
			return fmt.Errorf("scene %s: assertion[%d] has invalid type %q", s.ID, i, a.Type)
		}
	}
	return nil
}

// normalize fills in server-assigned defaults on a freshly decoded scene:
// a generated ID when absent, medium priority, and a creation timestamp.
func (s *Scene) normalize() {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Priority == "" {
		s.Priority = PriorityMedium
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
}
