package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenarios(t *testing.T) []*Scenario {
	t.Helper()
	files, err := Discover("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	scenarios := make([]*Scenario, 0, len(files))
	for _, f := range files {
		s, err := LoadScenario(f)
		require.NoError(t, err, f)
		scenarios = append(scenarios, s)
	}
	return scenarios
}

func TestRun_Scenarios(t *testing.T) {
	for _, s := range loadScenarios(t) {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/shared_pivot.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := Snapshot(s.Name, s.PassToken, first)
	require.NoError(t, err)
	b, err := Snapshot(s.Name, s.PassToken, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_PassToken(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/ask_form.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, "ask-pass", result.PassID)

	s.PassToken = ""
	result, err = Run(s)
	require.NoError(t, err)
	assert.Equal(t, "test-pass-default", result.PassID)
}

func TestRun_ErrorOutcome(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/unmapped_placeholder.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, "UNMAPPED_PLACEHOLDER", result.ErrorCode)
	assert.Error(t, result.Err)
	assert.Nil(t, result.Query)
	assert.Nil(t, result.Trace)
}

func TestRun_FailedExpectations(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/director_of_inception.yaml")
	require.NoError(t, err)

	s.Expect.Resolutions = map[string]string{"I1": "film:memento"}
	s.Expect.Unresolved = []string{}
	s.Expect.Searches = []SearchRecord{{Method: MethodInstance, Term: "Inception"}}
	s.Expect.Query = "ASK WHERE {}"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Assertion failed: resolutions")
	assert.Contains(t, result.Errors[0], "I1=film:inception (want film:memento)")
	assert.Contains(t, result.Errors[1], "Assertion failed: unresolved")
	assert.Contains(t, result.Errors[2], "Assertion failed: searches")
	assert.Contains(t, result.Errors[3], "Assertion failed: query")
}

func TestRun_UnexpectedSuccess(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/pivotless_predicate.yaml")
	require.NoError(t, err)
	s.Expect = Expect{Error: "RESOLUTION_FAILURE"}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "pass succeeded")
}

func TestRun_WrongErrorCode(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/require_pivot.yaml")
	require.NoError(t, err)
	s.Expect.Error = "BACKEND_UNAVAILABLE"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "error BACKEND_UNAVAILABLE")
	assert.Contains(t, result.Errors[0], "RESOLUTION_FAILURE")
}

func TestRun_MissingDatasetFile(t *testing.T) {
	s := &Scenario{
		Name:        "missing",
		Description: "d",
		DatasetFile: filepath.Join(t.TempDir(), "missing.yaml"),
		Plan:        PlanSpec{Patterns: []string{"?VAR1 TYPE ?VAR2"}},
	}
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load dataset")
}

func TestRun_BadBindingKind(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	s.Plan.Bindings[0].Kind = "thing"

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build plan")
}

func TestErrorCode(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/unknown_instance.yaml")
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, "RESOLUTION_FAILURE", ErrorCode(result.Err))
	assert.Equal(t, "ERROR", ErrorCode(assert.AnError))
}
