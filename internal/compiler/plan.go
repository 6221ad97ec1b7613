package compiler

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/queryir"
)

//go:embed schema.cue
var schemaCUE string

// PlanField is the top-level field holding the plan in a CUE document.
const PlanField = "plan"

// planSchema compiles the #Plan definition in the context of v.
// Values only unify within one cue.Context, so the schema is built per call.
func planSchema(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("plan_schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile plan schema: %w", err)
	}
	return schema.LookupPath(cue.ParsePath("#Plan")), nil
}

// CompilePlan parses a CUE value into a queryir.Plan.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The value is the plan struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`plan: { patterns: ["?VAR1 P1 ?VAR2"], bindings: P1: {kind: "property", term: "director"} }`)
//	plan, err := CompilePlan(v.LookupPath(cue.ParsePath("plan")))
//
// Bindings keep their declaration order.
func CompilePlan(v cue.Value) (*queryir.Plan, error) {
	if !v.Exists() {
		return nil, &CompileError{Field: PlanField, Message: "plan is required"}
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema, err := planSchema(v.Context())
	if err != nil {
		return nil, err
	}
	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	plan := &queryir.Plan{}

	if q := unified.LookupPath(cue.ParsePath("question")); q.Exists() {
		if plan.Question, err = q.String(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	plan.Patterns, err = parsePatterns(unified)
	if err != nil {
		return nil, err
	}

	plan.Bindings, err = parseBindings(unified)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

func parsePatterns(v cue.Value) ([]ir.TriplePattern, error) {
	patternsVal := v.LookupPath(cue.ParsePath("patterns"))
	iter, err := patternsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var patterns []ir.TriplePattern
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		patterns = append(patterns, ir.TriplePattern(s))
	}
	return patterns, nil
}

func parseBindings(v cue.Value) ([]ir.Binding, error) {
	bindingsVal := v.LookupPath(cue.ParsePath("bindings"))
	if !bindingsVal.Exists() {
		return nil, nil
	}

	iter, err := bindingsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var bindings []ir.Binding
	for iter.Next() {
		placeholder := iter.Selector().Unquoted()
		val := iter.Value()

		kindStr, err := val.LookupPath(cue.ParsePath("kind")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		kind, err := ir.ParseBindingKind(kindStr)
		if err != nil {
			return nil, &CompileError{Field: "bindings." + placeholder + ".kind", Message: err.Error(), Pos: val.Pos()}
		}

		termVal, _ := val.LookupPath(cue.ParsePath("term")).Default()
		term, err := termVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		bindings = append(bindings, ir.Binding{Kind: kind, Placeholder: placeholder, Term: term})
	}
	return bindings, nil
}

// CompileSource compiles a CUE document and extracts its top-level plan.
func CompileSource(ctx *cue.Context, src []byte, filename string) (*queryir.Plan, error) {
	doc := ctx.CompileBytes(src, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompilePlan(doc.LookupPath(cue.ParsePath(PlanField)))
}
