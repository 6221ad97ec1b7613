package queryir

import (
	"fmt"

	"github.com/roach88/nlq/internal/ir"
)

// Validation codes (P001-P099).
const (
	CodeNoPatterns         = "P001" // plan has no patterns
	CodeMalformedPattern   = "P002" // pattern is not exactly three tokens
	CodeUnmappedToken      = "P003" // token neither structural nor bound
	CodeDuplicateBinding   = "P004" // two bindings share a placeholder
	CodeInvalidKind        = "P005" // binding kind unknown
	CodeEmptyTerm          = "P006" // searchable binding has no term
	CodeShadowedBinding    = "P007" // binding placeholder carries a structural prefix
	CodeStructuralBinding  = "P008" // variable or type binding without a structural prefix
	CodeUnusedBinding      = "P101" // warning: binding never referenced
	CodeForwardInstanceUse = "P102" // warning: instance used as context before it is introduced
)

// Issue is a single validation finding.
type Issue struct {
	Code    string `json:"code"`
	Pattern int    `json:"pattern"` // index into Plan.Patterns, -1 when not pattern specific
	Message string `json:"message"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	if i.Pattern >= 0 {
		return fmt.Sprintf("[%s] pattern %d: %s", i.Code, i.Pattern, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Code, i.Message)
}

// ValidationResult collects every issue found in a plan.
type ValidationResult struct {
	// Errors make the plan unresolvable.
	Errors []Issue `json:"errors"`

	// Warnings flag plans that resolve but likely not as intended.
	Warnings []Issue `json:"warnings"`
}

// IsValid reports whether the plan has no errors. Warnings are allowed.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Validate checks a plan without resolving it.
//
// Validate is a pure function with no side effects.
func Validate(p *Plan) ValidationResult {
	v := &validator{
		result: ValidationResult{Errors: []Issue{}, Warnings: []Issue{}},
	}
	if p == nil {
		v.addError(CodeNoPatterns, -1, "nil plan")
		return v.result
	}
	v.validateBindings(p)
	v.validatePatterns(p)
	return v.result
}

// validator accumulates issues during traversal.
type validator struct {
	result ValidationResult
}

func (v *validator) addError(code string, pattern int, format string, args ...any) {
	v.result.Errors = append(v.result.Errors, Issue{Code: code, Pattern: pattern, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) addWarning(code string, pattern int, format string, args ...any) {
	v.result.Warnings = append(v.result.Warnings, Issue{Code: code, Pattern: pattern, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) validateBindings(p *Plan) {
	seen := make(map[string]bool)
	for _, b := range p.Bindings {
		if seen[b.Placeholder] {
			v.addError(CodeDuplicateBinding, -1, "placeholder %q bound more than once", b.Placeholder)
		}
		seen[b.Placeholder] = true

		if !b.Kind.IsValid() {
			v.addError(CodeInvalidKind, -1, "placeholder %q has invalid kind %q", b.Placeholder, b.Kind)
			continue
		}
		if b.Kind.IsStructural() {
			if _, structural := StructuralKind(b.Placeholder); !structural {
				v.addError(CodeStructuralBinding, -1, "placeholder %q has kind %s but lacks the %s/%s prefix",
					b.Placeholder, b.Kind, VariablePrefix, TypePrefix)
			}
		}
		if !b.Kind.IsStructural() && b.Term == "" {
			v.addError(CodeEmptyTerm, -1, "placeholder %q (%s) has no search term", b.Placeholder, b.Kind)
		}
		if _, structural := StructuralKind(b.Placeholder); structural {
			v.addError(CodeShadowedBinding, -1, "placeholder %q is shadowed by the structural prefix rule", b.Placeholder)
		}
	}
}

func (v *validator) validatePatterns(p *Plan) {
	if len(p.Patterns) == 0 {
		v.addError(CodeNoPatterns, -1, "plan has no triple patterns")
		return
	}

	used := make(map[string]bool)
	introduced := make(map[string]int) // instance placeholder -> first pattern index

	for i, pat := range p.Patterns {
		tokens := pat.Tokens()
		if len(tokens) != 3 {
			v.addError(CodeMalformedPattern, i, "expected 3 tokens, got %d in %q", len(tokens), pat)
			continue
		}
		for _, tok := range tokens {
			if _, structural := StructuralKind(tok); structural {
				continue
			}
			if _, ok := p.Binding(tok); !ok {
				v.addError(CodeUnmappedToken, i, "unmapped placeholder %q", tok)
				continue
			}
			used[tok] = true
			if b, _ := p.Binding(tok); b.Kind == ir.KindInstance {
				if _, ok := introduced[tok]; !ok {
					introduced[tok] = i
				}
			}
		}
	}

	for _, b := range p.Bindings {
		if !used[b.Placeholder] {
			v.addWarning(CodeUnusedBinding, -1, "placeholder %q is never referenced", b.Placeholder)
		}
	}

	v.checkOrdering(p, introduced)
}

// checkOrdering warns when a pattern has no instance context of its own but
// a later pattern introduces an instance it could have used. Plan order is
// resolution order, so such a predicate is resolved without a pivot.
func (v *validator) checkOrdering(p *Plan, introduced map[string]int) {
	firstInstance := -1
	for _, idx := range introduced {
		if firstInstance == -1 || idx < firstInstance {
			firstInstance = idx
		}
	}
	if firstInstance <= 0 {
		return
	}

	for i := 0; i < firstInstance; i++ {
		tokens := p.Patterns[i].Tokens()
		if len(tokens) != 3 {
			continue
		}
		if b, ok := p.Binding(tokens[1]); ok && b.Kind.IsPredicate() {
			v.addWarning(CodeForwardInstanceUse, i,
				"predicate %q is resolved before any instance is introduced (first instance at pattern %d)",
				tokens[1], firstInstance)
		}
	}
}
