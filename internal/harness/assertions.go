package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Searches []SearchRecord // Backend calls for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Searches) > 0 {
		fmt.Fprintf(&buf, "\nSearches:\n")
		for i, s := range e.Searches {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, s)
		}
	}

	return buf.String()
}

// String renders a search record as "method(term)" or "method(term @ pivot)".
func (s SearchRecord) String() string {
	if s.Pivot == "" {
		return fmt.Sprintf("%s(%q)", s.Method, s.Term)
	}
	return fmt.Sprintf("%s(%q @ %s)", s.Method, s.Term, s.Pivot)
}

// evaluate checks every expectation and records failures on result.
func evaluate(result *Result, expect Expect) {
	checks := []func(*Result, Expect) error{
		assertOutcome,
		assertResolutions,
		assertUnresolved,
		assertSearches,
		assertQuery,
	}
	for _, check := range checks {
		if err := check(result, expect); err != nil {
			result.AddError(err.Error())
		}
	}
}

// assertOutcome checks that the pass failed with the expected code, or
// succeeded when no error is expected.
func assertOutcome(result *Result, expect Expect) error {
	switch {
	case expect.Error == "" && result.Err != nil:
		return &AssertionError{
			Type:     "outcome",
			Expected: "pass succeeds",
			Actual:   result.Err.Error(),
			Searches: result.Searches,
		}
	case expect.Error != "" && result.Err == nil:
		return &AssertionError{
			Type:     "outcome",
			Expected: "error " + expect.Error,
			Actual:   "pass succeeded",
			Searches: result.Searches,
		}
	case expect.Error != "" && result.ErrorCode != expect.Error:
		return &AssertionError{
			Type:     "outcome",
			Expected: "error " + expect.Error,
			Actual:   result.Err.Error(),
			Searches: result.Searches,
		}
	}
	return nil
}

// assertResolutions checks that each expected placeholder resolved to the
// expected entity (subset match).
func assertResolutions(result *Result, expect Expect) error {
	if len(expect.Resolutions) == 0 || result.Query == nil {
		return nil
	}
	var missing []string
	for _, ph := range sortedKeys(expect.Resolutions) {
		want := expect.Resolutions[ph]
		got, ok := result.Query.Resolutions[ph]
		if !ok {
			missing = append(missing, fmt.Sprintf("%s unresolved (want %s)", ph, want))
			continue
		}
		if got != want {
			missing = append(missing, fmt.Sprintf("%s=%s (want %s)", ph, got, want))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     "resolutions",
		Expected: fmt.Sprintf("%v", expect.Resolutions),
		Actual:   strings.Join(missing, ", "),
		Searches: result.Searches,
	}
}

// assertUnresolved checks the exact unresolved placeholder list.
// A nil expectation is not checked.
func assertUnresolved(result *Result, expect Expect) error {
	if expect.Unresolved == nil || result.Query == nil {
		return nil
	}
	if slices.Equal(expect.Unresolved, result.Query.Unresolved) {
		return nil
	}
	return &AssertionError{
		Type:     "unresolved",
		Expected: fmt.Sprintf("%v", expect.Unresolved),
		Actual:   fmt.Sprintf("%v", result.Query.Unresolved),
	}
}

// assertSearches checks the exact ordered list of backend calls.
// A nil expectation is not checked.
func assertSearches(result *Result, expect Expect) error {
	if expect.Searches == nil {
		return nil
	}
	if slices.Equal(expect.Searches, result.Searches) {
		return nil
	}
	return &AssertionError{
		Type:     "searches",
		Expected: formatSearches(expect.Searches),
		Actual:   formatSearches(result.Searches),
	}
}

// assertQuery compares query text, ignoring surrounding whitespace.
func assertQuery(result *Result, expect Expect) error {
	if expect.Query == "" || result.Query == nil {
		return nil
	}
	want := strings.TrimSpace(expect.Query)
	got := strings.TrimSpace(result.Query.Text)
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     "query",
		Expected: "\n" + want,
		Actual:   "\n" + got,
		Searches: result.Searches,
	}
}

func formatSearches(searches []SearchRecord) string {
	if len(searches) == 0 {
		return "no searches"
	}
	parts := make([]string, len(searches))
	for i, s := range searches {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
