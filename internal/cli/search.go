package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/nlq/internal/engine"
	"github.com/roach88/nlq/internal/ir"
	"github.com/roach88/nlq/internal/rank"
	"github.com/roach88/nlq/internal/store"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	StoreOptions
	Pivot     string
	Semantic  bool
	Threshold float64
}

// Candidate is one ranked search result.
type Candidate struct {
	ID    string        `json:"id"`
	Label string        `json:"label"`
	Kind  ir.EntityKind `json:"kind"`
	Score float64       `json:"score"`
}

// SearchResult is the output of the search command.
type SearchResult struct {
	Term       string      `json:"term"`
	Strategy   string      `json:"strategy"`
	Pivot      string      `json:"pivot,omitempty"`
	Candidates []Candidate `json:"candidates"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Query the entity index directly",
		Long: `Run a single ranked search against the entity index.

Without flags, instances are ranked lexically. With --pivot, classes and
properties related to the pivot entity are ranked semantically; with
--semantic and no pivot, all classes and properties are.

Examples:
  nlq search "Inception" --db films.db
  nlq search director --db films.db --pivot film:inception
  nlq search "birth place" --db films.db --semantic --threshold 0.2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args[0], cmd)
		},
	}

	opts.StoreOptions.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Pivot, "pivot", "", "entity id scoping a class/property search")
	cmd.Flags().BoolVar(&opts.Semantic, "semantic", false, "rank classes and properties instead of instances")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "fixed score threshold (default: strategy default)")

	return cmd
}

func runSearch(opts *SearchOptions, term string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.Logger(cmd.ErrOrStderr())
	ctx := cmd.Context()

	st, err := opts.StoreOptions.open(formatter, logger, true)
	if err != nil {
		return err
	}
	defer st.Close()

	pivoted := opts.Semantic || opts.Pivot != ""
	params := rank.Levenshtein()
	if pivoted {
		params = rank.Embedding()
	}
	if cmd.Flags().Changed("threshold") {
		params = params.WithThreshold(opts.Threshold)
	}
	if err := params.Validate(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	var scores ir.Scores
	if pivoted {
		var pivot *ir.Entity
		if opts.Pivot != "" {
			e, err := st.ReadEntity(ctx, opts.Pivot)
			if errors.Is(err, store.ErrNotFound) {
				return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("pivot entity not found: %s", opts.Pivot), nil)
			}
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
			}
			pivot = &e
		}
		scores, err = st.PivotedSearch(ctx, pivot, term, params)
	} else {
		scores, err = st.InstanceSearch(ctx, term, params)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, string(engine.ErrCodeBackendUnavailable), err.Error(), nil)
	}

	result := SearchResult{
		Term:       term,
		Strategy:   string(params.Strategy),
		Pivot:      opts.Pivot,
		Candidates: make([]Candidate, len(scores)),
	}
	for i, s := range scores {
		result.Candidates[i] = Candidate{ID: s.Entity.ID, Label: s.Entity.Label, Kind: s.Entity.Kind, Score: s.Value}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	if len(result.Candidates) == 0 {
		fmt.Fprintf(formatter.Writer, "No candidates for %q.\n", term)
		return nil
	}
	for _, c := range result.Candidates {
		fmt.Fprintf(formatter.Writer, "%.3f  %-9s %s  %s\n", c.Score, c.Kind, c.ID, c.Label)
	}
	return nil
}
