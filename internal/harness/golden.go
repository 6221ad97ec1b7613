package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/nlq/internal/ir"
)

// Snapshot renders the deterministic part of a scenario run as canonical
// JSON, followed by a newline.
//
// Scores are left out: they are floats, which canonical JSON rejects, and
// they depend on the embedder. The plan ID is left out so that editing a
// scenario's question does not churn its golden file.
func Snapshot(scenarioName string, passToken string, result *Result) ([]byte, error) {
	if passToken == "" {
		passToken = "test-pass-default"
	}

	searches := make([]any, len(result.Searches))
	for i, s := range result.Searches {
		m := map[string]any{
			"method": s.Method,
			"term":   s.Term,
		}
		if s.Pivot != "" {
			m["pivot"] = s.Pivot
		}
		searches[i] = m
	}

	snapshot := map[string]any{
		"scenario_name": scenarioName,
		"pass_token":    passToken,
		"searches":      searches,
	}

	if result.Err != nil {
		snapshot["error"] = result.ErrorCode
	} else {
		trace := make([]any, len(result.Trace))
		for i, step := range result.Trace {
			m := map[string]any{
				"seq":         step.Seq,
				"pattern":     step.Pattern,
				"role":        string(step.Role),
				"placeholder": step.Placeholder,
				"term":        step.Term,
				"source":      string(step.Source),
				"entity":      step.Entity.ID,
			}
			if step.Strategy != "" {
				m["strategy"] = string(step.Strategy)
			}
			if step.Pivot != "" {
				m["pivot"] = step.Pivot
			}
			trace[i] = m
		}
		snapshot["trace"] = trace
		snapshot["query"] = result.Query.Text
		snapshot["resolutions"] = result.Query.Resolutions
		snapshot["unresolved"] = result.Query.Unresolved
	}

	data, err := ir.MarshalCanonical(snapshot)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, scenario.PassToken, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName, passToken string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, passToken, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
