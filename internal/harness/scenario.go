package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/queryir"
	"github.com/roach88/nlq/internal/store"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dataset is an inline entity dataset.
	Dataset *store.Dataset `yaml:"dataset,omitempty"`

	// DatasetFile is a dataset YAML path, relative to the scenario file.
	// Exactly one of Dataset and DatasetFile is set.
	DatasetFile string `yaml:"dataset_file,omitempty"`

	// Plan is the query plan to resolve.
	Plan PlanSpec `yaml:"plan"`

	// RequirePivot makes pivotless predicate resolution fail.
	RequirePivot bool `yaml:"require_pivot,omitempty"`

	// PassToken is an optional fixed pass token.
	// If empty, defaults to "test-pass-default".
	PassToken string `yaml:"pass_token,omitempty"`

	// Expect describes the expected outcome.
	Expect Expect `yaml:"expect"`
}

// PlanSpec is the YAML form of a query plan. Bindings are a list so that
// declaration order survives decoding.
type PlanSpec struct {
	Question string        `yaml:"question,omitempty"`
	Patterns []string      `yaml:"patterns"`
	Bindings []BindingSpec `yaml:"bindings,omitempty"`
}

// BindingSpec is the YAML form of a binding.
type BindingSpec struct {
	Placeholder string `yaml:"placeholder"`
	Kind        string `yaml:"kind"`
	Term        string `yaml:"term"`
}

// ToPlan converts the YAML form into a plan.
func (p PlanSpec) ToPlan() (*queryir.Plan, error) {
	plan := &queryir.Plan{Question: p.Question}
	for _, pat := range p.Patterns {
		plan.Patterns = append(plan.Patterns, ir.TriplePattern(pat))
	}
	for i, b := range p.Bindings {
		kind, err := ir.ParseBindingKind(b.Kind)
		if err != nil {
			return nil, fmt.Errorf("bindings[%d]: %w", i, err)
		}
		plan.Bindings = append(plan.Bindings, ir.Binding{Kind: kind, Placeholder: b.Placeholder, Term: b.Term})
	}
	return plan, nil
}

// Expect specifies the expected outcome of a scenario.
type Expect struct {
	// Error is the expected error code. Empty means the pass must succeed.
	Error string `yaml:"error,omitempty"`

	// Resolutions maps placeholder to entity id. Subset match.
	Resolutions map[string]string `yaml:"resolutions,omitempty"`

	// Unresolved is the exact list of unresolved placeholders, when set.
	Unresolved []string `yaml:"unresolved,omitempty"`

	// Searches is the exact ordered list of backend calls, when set.
	Searches []SearchRecord `yaml:"searches,omitempty"`

	// Query is the expected SPARQL text.
	Query string `yaml:"query,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// DatasetFile is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.DatasetFile != "" && !filepath.IsAbs(scenario.DatasetFile) {
		scenario.DatasetFile = filepath.Join(filepath.Dir(path), scenario.DatasetFile)
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if (s.Dataset == nil) == (s.DatasetFile == "") {
		return errors.New("exactly one of dataset and dataset_file is required")
	}
	if len(s.Plan.Patterns) == 0 {
		return errors.New("plan.patterns is required and must be non-empty")
	}
	for i, b := range s.Plan.Bindings {
		if b.Placeholder == "" {
			return fmt.Errorf("plan.bindings[%d]: placeholder is required", i)
		}
	}
	if s.Expect.Error != "" && (s.Expect.Query != "" || len(s.Expect.Resolutions) > 0) {
		return errors.New("expect.error cannot be combined with query or resolutions")
	}
	return nil
}

// dataset returns the scenario's dataset, loading DatasetFile if needed.
func (s *Scenario) dataset() (*store.Dataset, error) {
	if s.Dataset != nil {
		if err := s.Dataset.Validate(); err != nil {
			return nil, fmt.Errorf("invalid dataset: %w", err)
		}
		return s.Dataset, nil
	}
	return store.LoadDataset(s.DatasetFile)
}
