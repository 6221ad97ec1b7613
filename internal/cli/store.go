package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/nlq/internal/store"
)

// Embedder names accepted by --embedder.
const (
	EmbedderHash   = "hash"
	EmbedderOllama = "ollama"
)

// StoreOptions holds the flags that select and open the entity index.
type StoreOptions struct {
	Database   string
	Embedder   string
	EmbedURL   string
	EmbedModel string
}

// addFlags registers the store flags on cmd.
func (o *StoreOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "nlq.db", "path to the SQLite entity index")
	cmd.Flags().StringVar(&o.Embedder, "embedder", EmbedderHash, "embedder for semantic search (hash|ollama)")
	cmd.Flags().StringVar(&o.EmbedURL, "embed-url", "", "Ollama base URL (default http://localhost:11434)")
	cmd.Flags().StringVar(&o.EmbedModel, "embed-model", "", "Ollama embedding model (default nomic-embed-text)")
}

// embedder builds the embedder named by the flags.
func (o *StoreOptions) embedder() (store.Embedder, error) {
	switch o.Embedder {
	case EmbedderHash, "":
		return store.NewHashingEmbedder(store.DefaultDims), nil
	case EmbedderOllama:
		return store.NewOllamaEmbedder(o.EmbedURL, o.EmbedModel), nil
	default:
		return nil, fmt.Errorf("unknown embedder %q: must be %s or %s", o.Embedder, EmbedderHash, EmbedderOllama)
	}
}

// open opens the index. When mustExist is set, a missing database file is
// an error rather than a new empty index.
func (o *StoreOptions) open(f *OutputFormatter, logger *slog.Logger, mustExist bool) (*store.Store, error) {
	emb, err := o.embedder()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeEmbedder, err.Error(), nil)
	}

	if mustExist && o.Database != ":memory:" {
		if _, err := os.Stat(o.Database); os.IsNotExist(err) {
			return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s (run nlq index first)", o.Database), nil)
		}
	}

	st, err := store.Open(o.Database, store.WithEmbedder(emb), store.WithLogger(logger))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
	}
	f.VerboseLog("Opened %s (embedder %s)", o.Database, emb.Name())
	return st, nil
}
