package harness

import (
	"github.com/roach88/nlq/internal/engine"
	"github.com/roach88/nlq/internal/querysparql"
)

// SearchRecord is one call the engine made to the search backend.
type SearchRecord struct {
	Method string `yaml:"method" json:"method"`
	Term   string `yaml:"term" json:"term"`

	// Pivot is the pivot entity id; empty for instance and unscoped searches.
	Pivot string `yaml:"pivot,omitempty" json:"pivot,omitempty"`
}

// Search methods.
const (
	MethodInstance = "instance"
	MethodPivoted  = "pivoted"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates every expectation held.
	Pass bool `json:"pass"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// PassID is the token of the resolution pass.
	PassID string `json:"pass_id"`

	// Query is the emitted query; nil when the pass failed.
	Query *querysparql.Query `json:"query,omitempty"`

	// Trace holds the resolution steps; nil when the pass failed.
	Trace []engine.Step `json:"trace,omitempty"`

	// Searches lists every backend call, including those of a failed pass.
	Searches []SearchRecord `json:"searches"`

	// ErrorCode is the code of the pass failure, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Err is the pass failure, if any.
	Err error `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Errors:   []string{},
		Searches: []SearchRecord{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
