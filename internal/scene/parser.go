package scene

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAMLFile reads a scene definition file and returns the scenes it
// contains. Three document shapes are accepted:
//
//   - a list of scenes:      [{title: ..., ...}, ...]
//   - a single scene:        {title: ..., ...}
//   - a wrapped list:        {scenes: [{title: ..., ...}, ...]}
//
// Every decoded scene is normalized (generated ID, default priority) and
// validated before being returned.
func ParseYAMLFile(path string) ([]*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: reading %s: %w", path, err)
	}
	scenes, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("scene: parsing %s: %w", path, err)
	}
	return scenes, nil
}

// ParseYAML decodes scene definitions from YAML bytes. See ParseYAMLFile
// for the accepted document shapes.
func ParseYAML(data []byte) ([]*Scene, error) {
	// Try the wrapped form first: {scenes: [...]}.
	var wrapped struct {
		Scenes []*Scene `yaml:"scenes"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Scenes) > 0 {
		return finishScenes(wrapped.Scenes)
	}

	// Then a bare list.
	var list []*Scene
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return finishScenes(list)
	}

	// Finally a single scene object.
	var single Scene
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("document must be a scene, a list of scenes, or a {scenes: [...]} wrapper: %w", err)
	}
	if single.Title == "" {
		return nil, fmt.Errorf("document contains no scenes")
	}
	return finishScenes([]*Scene{&single})
}

// finishScenes normalizes and validates decoded scenes.
func finishScenes(scenes []*Scene) ([]*Scene, error) {
	for _, s := range scenes {
		s.normalize()
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return scenes, nil
}

// ParseGherkin converts Given/When/Then text into a Scene. The title comes
// from the Feature: or Scenario: line; When statements become steps; Then
// statements become semantic assertions against the response. And lines
// attach to the preceding section.
func ParseGherkin(text string) (*Scene, error) {
	var (
		title   string
		given   []string
		when    []string
		then    []string
		section string
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "Feature:"):
			title = strings.TrimSpace(strings.TrimPrefix(line, "Feature:"))
		case strings.HasPrefix(line, "Scenario:"):
			title = strings.TrimSpace(strings.TrimPrefix(line, "Scenario:"))
		case strings.HasPrefix(line, "Given"):
			section = "given"
			given = append(given, strings.TrimSpace(strings.TrimPrefix(line, "Given")))
		case strings.HasPrefix(line, "When"):
			section = "when"
			when = append(when, strings.TrimSpace(strings.TrimPrefix(line, "When")))
		case strings.HasPrefix(line, "Then"):
			section = "then"
			then = append(then, strings.TrimSpace(strings.TrimPrefix(line, "Then")))
		case strings.HasPrefix(line, "And"):
			rest := strings.TrimSpace(strings.TrimPrefix(line, "And"))
			switch section {
			case "given":
				given = append(given, rest)
			case "when":
				when = append(when, rest)
			case "then":
				then = append(then, rest)
			}
		}
	}

	if title == "" && len(when) == 0 && len(then) == 0 {
		return nil, fmt.Errorf("scene: no Gherkin structure found in text")
	}

	var parts []string
	parts = append(parts, given...)
	parts = append(parts, when...)
	parts = append(parts, then...)

	s := New(title, strings.Join(parts, " "))
	for _, stmt := range when {
		s.AddStep(stmt, nil, "")
	}
	for _, stmt := range then {
		s.AddAssertion(AssertSemantic, "response", stmt, stmt)
	}
	return s, nil
}
