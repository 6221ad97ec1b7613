package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/nlq/internal/engine"
	"github.com/roach88/nlq/internal/querysparql"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	StoreOptions
	RequirePivot bool
	Trace        bool
}

// ResolveResult is the output of the resolve command.
type ResolveResult struct {
	PassID string             `json:"pass_id"`
	Query  *querysparql.Query `json:"query"`
	Trace  []engine.Step      `json:"trace"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <plan.cue|plan-dir>",
		Short: "Resolve a query plan and print the SPARQL query",
		Long: `Resolve every placeholder of a CUE query plan against the entity index
and print the resulting SPARQL query.

Patterns are processed in plan order. The first failure aborts the pass.

Exit codes:
  0 - Query emitted
  1 - Resolution failed (UNMAPPED_PLACEHOLDER, RESOLUTION_FAILURE,
      BACKEND_UNAVAILABLE, MALFORMED_PATTERN) or plan did not compile
  2 - Command error (plan or database not found, etc.)

Examples:
  nlq resolve director.cue --db films.db
  nlq resolve director.cue --db films.db --trace
  nlq resolve director.cue --db films.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	opts.StoreOptions.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.RequirePivot, "require-pivot", false, "fail when a class or property has no instance to scope its search")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print resolution steps after the query (text format)")

	return cmd
}

func runResolve(opts *ResolveOptions, planPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.Logger(cmd.ErrOrStderr())

	loaded, err := LoadPlan(planPath)
	if err != nil {
		return failLoad(formatter, err)
	}

	st, err := opts.StoreOptions.open(formatter, logger, true)
	if err != nil {
		return err
	}
	defer st.Close()

	eng := engine.New(st,
		engine.WithLogger(logger),
		engine.WithRequirePivot(opts.RequirePivot),
	)

	out, err := eng.Resolve(cmd.Context(), loaded.Plan)
	if err != nil {
		return formatter.Fail(ExitFailure, resolutionCode(err), err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(ResolveResult{PassID: out.PassID, Query: out.Query, Trace: out.Trace})
	}

	fmt.Fprint(formatter.Writer, out.Query.Text)
	for _, ph := range out.Query.Unresolved {
		fmt.Fprintf(formatter.Writer, "# unresolved: %s\n", ph)
	}
	if opts.Trace {
		writeTrace(formatter.Writer, out.Trace)
	}
	return nil
}

// writeTrace prints one line per resolution step.
func writeTrace(w io.Writer, trace []engine.Step) {
	fmt.Fprintln(w, "# trace:")
	for _, s := range trace {
		fmt.Fprintf(w, "#   [%d] pattern %d %s %s %q -> %s", s.Seq, s.Pattern, s.Role, s.Placeholder, s.Term, s.Entity.ID)
		switch {
		case s.Source == engine.SourceMemo:
			fmt.Fprint(w, " (memo)")
		case s.Pivot != "":
			fmt.Fprintf(w, " (%s %.3f, %d candidates, pivot %s)", s.Strategy, s.Score, s.Candidates, s.Pivot)
		default:
			fmt.Fprintf(w, " (%s %.3f, %d candidates)", s.Strategy, s.Score, s.Candidates)
		}
		fmt.Fprintln(w)
	}
}

// failLoad reports a LoadPlan error.
func failLoad(f *OutputFormatter, err error) error {
	if loadErr, ok := err.(*LoadError); ok {
		return f.Fail(loadErr.ExitCode(), loadErr.Code, loadErr.Error(), nil)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
