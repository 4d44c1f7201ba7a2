// Package fixtures loads named raw-DPS-record shapes and their expected
// classification outcome from a YAML fixture file, for use in
// pkg/manager's classification tests.
package fixtures

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed classification_fixtures.yaml
var classificationFixturesYAML []byte

// ClassificationFixture is one named raw DPS record and the driver kind
// pkg/manager.classify is expected to return for it.
type ClassificationFixture struct {
	Name   string
	Want   string
	Record map[string]any
}

type yamlFixtureFile struct {
	Fixtures []yamlFixture `yaml:"fixtures"`
}

type yamlFixture struct {
	Name   string         `yaml:"name"`
	Want   string         `yaml:"want"`
	Record map[string]any `yaml:"record"`
}

// LoadClassificationFixtures parses the embedded classification fixture
// file into a slice of ClassificationFixture.
func LoadClassificationFixtures() ([]ClassificationFixture, error) {
	var f yamlFixtureFile
	if err := yaml.Unmarshal(classificationFixturesYAML, &f); err != nil {
		return nil, fmt.Errorf("fixtures: parse classification fixtures: %w", err)
	}

	out := make([]ClassificationFixture, 0, len(f.Fixtures))
	for _, fx := range f.Fixtures {
		if fx.Name == "" {
			return nil, fmt.Errorf("fixtures: classification fixture missing a name")
		}
		out = append(out, ClassificationFixture{
			Name:   fx.Name,
			Want:   fx.Want,
			Record: fx.Record,
		})
	}
	return out, nil
}
