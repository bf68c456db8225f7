package scene

// Builder constructs a Scene fluently. Unlike the Add* methods on Scene,
// the builder accumulates parts internally and only materializes the Scene
// on Build, so a partially constructed instance never escapes.
type Builder struct {
	title       string
	description string
	actor       *Actor
	priority    Priority
	tags        []string
	steps       []Step
	assertions  []Assertion
	edgeCases   []string
	metadata    map[string]any
}

// NewBuilder starts a builder for a scene with the given title and
// description.
func NewBuilder(title, description string) *Builder {
	return &Builder{
		title:       title,
		description: description,
		priority:    PriorityMedium,
		metadata:    map[string]any{},
	}
}

// WithActor sets the acting role. authType may be empty for unauthenticated
// actors; persona is an optional prose description.
func (b *Builder) WithActor(role, authType, authValue, persona string) *Builder {
	var auth *AuthConfig
	if authType != "" {
		auth = &AuthConfig{Type: authType, Value: authValue}
	}
	b.actor = &Actor{Role: role, Auth: auth, Persona: persona}
	return b
}

// WithPriority sets the priority level.
func (b *Builder) WithPriority(p Priority) *Builder {
	b.priority = p
	return b
}

// WithTags appends tags.
func (b *Builder) WithTags(tags ...string) *Builder {
	b.tags = append(b.tags, tags...)
	return b
}

// WithStep appends a step.
func (b *Builder) WithStep(action string, input map[string]any, expect string) *Builder {
	b.steps = append(b.steps, Step{Action: action, Input: input, Expect: expect})
	return b
}

// WithAssertion appends an assertion.
func (b *Builder) WithAssertion(typ AssertionType, target string, expected any, semanticPrompt string) *Builder {
	b.assertions = append(b.assertions, Assertion{
		Type:           typ,
		Target:         target,
		Expected:       expected,
		SemanticPrompt: semanticPrompt,
	})
	return b
}

// WithEdgeCase appends an edge-case hint.
func (b *Builder) WithEdgeCase(description string) *Builder {
	b.edgeCases = append(b.edgeCases, description)
	return b
}

// WithMetadata sets a metadata key.
func (b *Builder) WithMetadata(key string, value any) *Builder {
	b.metadata[key] = value
	return b
}

// Build materializes the Scene. Slices and the metadata map are copied so
// further builder mutation cannot affect the returned value.
func (b *Builder) Build() *Scene {
	s := New(b.title, b.description)
	s.Actor = b.actor
	s.Priority = b.priority
	s.Tags = append([]string(nil), b.tags...)
	s.Steps = append([]Step(nil), b.steps...)
	s.Assertions = append([]Assertion(nil), b.assertions...)
	s.EdgeCases = append([]string(nil), b.edgeCases...)
	for k, v := range b.metadata {
		s.Metadata[k] = v
	}
	return s
}
