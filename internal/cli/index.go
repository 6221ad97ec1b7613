package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/nlq/internal/store"
)

// IndexOptions holds flags for the index command.
type IndexOptions struct {
	*RootOptions
	StoreOptions
}

// IndexResult is the output of the index command.
type IndexResult struct {
	Dataset  string           `json:"dataset"`
	Database string           `json:"database"`
	Embedder string           `json:"embedder"`
	Stats    store.IndexStats `json:"stats"`
}

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "index <dataset.yaml>",
		Short: "Load a YAML entity dataset into the index",
		Long: `Load entities, class memberships and edges from a YAML dataset into
the SQLite entity index, computing embeddings for classes and properties.

Indexing is idempotent: re-indexing a dataset replaces its rows. An index
is bound to the embedder that built it; indexing with another embedder
fails.

Examples:
  nlq index films.yaml --db films.db
  nlq index films.yaml --db films.db --embedder ollama --embed-model nomic-embed-text`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts, args[0], cmd)
		},
	}

	opts.StoreOptions.addFlags(cmd)

	return cmd
}

func runIndex(opts *IndexOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.Logger(cmd.ErrOrStderr())

	ds, err := store.LoadDataset(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDataset, err.Error(), nil)
	}
	formatter.VerboseLog("Loaded %d entities and %d edges from %s", len(ds.Entities), len(ds.Edges), path)

	st, err := opts.StoreOptions.open(formatter, logger, false)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Index(cmd.Context(), ds)
	if err != nil {
		if errors.Is(err, store.ErrEmbedderMismatch) {
			return formatter.Fail(ExitFailure, ErrCodeDataset, err.Error(), nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeDataset, fmt.Sprintf("indexing dataset: %v", err), nil)
	}

	result := IndexResult{
		Dataset:  path,
		Database: opts.Database,
		Embedder: st.Embedder().Name(),
		Stats:    stats,
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Indexed %d entities, %d types, %d edges into %s (%s)\n",
		stats.Entities, stats.Types, stats.Edges, result.Database, result.Embedder)
	return nil
}
