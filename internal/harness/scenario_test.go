package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlq/internal/ir"
)

const minimalScenario = `
name: minimal
description: "Smallest valid scenario"
dataset:
  entities:
    - {id: "film:inception", label: Inception, kind: instance}
plan:
  patterns: ["I1 TYPE ?VAR1"]
  bindings:
    - {placeholder: I1, kind: instance, term: Inception}
expect:
  resolutions: {I1: "film:inception"}
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.NotNil(t, s.Dataset)
	assert.Len(t, s.Dataset.Entities, 1)
	assert.Equal(t, []string{"I1 TYPE ?VAR1"}, s.Plan.Patterns)
	assert.Equal(t, map[string]string{"I1": "film:inception"}, s.Expect.Resolutions)
	assert.Nil(t, s.Expect.Unresolved)
	assert.Nil(t, s.Expect.Searches)
}

func TestParseScenario_EmptyListsAreChecked(t *testing.T) {
	data := minimalScenario + "  unresolved: []\n  searches: []\n"
	s, err := ParseScenario([]byte(data))
	require.NoError(t, err)

	assert.NotNil(t, s.Expect.Unresolved)
	assert.Empty(t, s.Expect.Unresolved)
	assert.NotNil(t, s.Expect.Searches)
}

func TestParseScenario_UnknownField(t *testing.T) {
	data := minimalScenario + "  resolution: {}\n"
	_, err := ParseScenario([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: `
description: d
dataset: {entities: []}
plan: {patterns: ["?VAR1 TYPE ?VAR2"]}
`,
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: n
dataset: {entities: []}
plan: {patterns: ["?VAR1 TYPE ?VAR2"]}
`,
			want: "description is required",
		},
		{
			name: "no dataset",
			yaml: `
name: n
description: d
plan: {patterns: ["?VAR1 TYPE ?VAR2"]}
`,
			want: "exactly one of dataset and dataset_file",
		},
		{
			name: "both datasets",
			yaml: `
name: n
description: d
dataset: {entities: []}
dataset_file: films.yaml
plan: {patterns: ["?VAR1 TYPE ?VAR2"]}
`,
			want: "exactly one of dataset and dataset_file",
		},
		{
			name: "no patterns",
			yaml: `
name: n
description: d
dataset: {entities: []}
plan: {patterns: []}
`,
			want: "plan.patterns is required",
		},
		{
			name: "binding without placeholder",
			yaml: `
name: n
description: d
dataset: {entities: []}
plan:
  patterns: ["?VAR1 TYPE ?VAR2"]
  bindings: [{kind: instance, term: x}]
`,
			want: "plan.bindings[0]: placeholder is required",
		},
		{
			name: "error with query",
			yaml: `
name: n
description: d
dataset: {entities: []}
plan: {patterns: ["?VAR1 TYPE ?VAR2"]}
expect:
  error: RESOLUTION_FAILURE
  query: "ASK WHERE {}"
`,
			want: "expect.error cannot be combined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_ResolvesDatasetFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/shared_pivot.yaml")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "datasets", "films.yaml"), s.DatasetFile)

	ds, err := s.dataset()
	require.NoError(t, err)
	assert.NotEmpty(t, ds.Entities)
	assert.NotEmpty(t, ds.Edges)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_AbsoluteDatasetFile(t *testing.T) {
	dir := t.TempDir()
	abs, err := filepath.Abs("testdata/datasets/films.yaml")
	require.NoError(t, err)

	data := "name: abs\ndescription: d\ndataset_file: " + abs + "\nplan: {patterns: [\"?VAR1 TYPE ?VAR2\"]}\n"
	path := filepath.Join(dir, "abs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, abs, s.DatasetFile)
}

func TestPlanSpec_ToPlan(t *testing.T) {
	ps := PlanSpec{
		Question: "Who directed Inception?",
		Patterns: []string{"I1 P1 ?VAR1"},
		Bindings: []BindingSpec{
			{Placeholder: "I1", Kind: "instance", Term: "Inception"},
			{Placeholder: "P1", Kind: "property", Term: "director"},
		},
	}

	plan, err := ps.ToPlan()
	require.NoError(t, err)

	assert.Equal(t, "Who directed Inception?", plan.Question)
	assert.Equal(t, []ir.TriplePattern{"I1 P1 ?VAR1"}, plan.Patterns)
	assert.Equal(t, []ir.Binding{
		{Kind: ir.KindInstance, Placeholder: "I1", Term: "Inception"},
		{Kind: ir.KindProperty, Placeholder: "P1", Term: "director"},
	}, plan.Bindings)
}

func TestPlanSpec_ToPlan_BadKind(t *testing.T) {
	ps := PlanSpec{
		Patterns: []string{"I1 P1 ?VAR1"},
		Bindings: []BindingSpec{{Placeholder: "I1", Kind: "thing", Term: "x"}},
	}
	_, err := ps.ToPlan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bindings[0]")
}
