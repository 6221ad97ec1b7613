package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/nlq/internal/queryir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	PlanID   string          `json:"plan_id,omitempty"`
	Patterns int             `json:"patterns"`
	Bindings int             `json:"bindings"`
	Errors   []queryir.Issue `json:"errors,omitempty"`
	Warnings []queryir.Issue `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <plan.cue|plan-dir>",
		Short: "Validate a query plan without resolving it",
		Long: `Compile a CUE query plan and check it without touching the index.

Reports every problem at once: malformed patterns, tokens with no binding,
duplicate or shadowed bindings, invalid kinds and empty search terms.
Unused bindings and patterns that use an instance before the pattern that
introduces it are reported as warnings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, planPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := LoadPlan(planPath)
	if err != nil {
		return failLoad(formatter, err)
	}
	formatter.VerboseLog("Compiled plan from %d CUE file(s)", len(loaded.Files))

	plan := loaded.Plan
	vr := queryir.Validate(plan)
	result := ValidationResult{
		Valid:    vr.IsValid(),
		Patterns: len(plan.Patterns),
		Bindings: len(plan.Bindings),
		Errors:   vr.Errors,
		Warnings: vr.Warnings,
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}

	if result.PlanID, err = plan.ID(); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalidPlan, fmt.Sprintf("hashing plan: %v", err), nil)
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Plan valid (%d patterns, %d bindings)\n", result.Patterns, result.Bindings)
	writeWarnings(formatter, result.Warnings)
	return nil
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeInvalidPlan,
				Message: errs[0].Error(),
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
	}
	writeWarnings(formatter, result.Warnings)

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

func writeWarnings(formatter *OutputFormatter, warnings []queryir.Issue) {
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "  warning %s\n", w.Error())
	}
}
