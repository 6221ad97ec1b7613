package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// indexedDB indexes testdata/films.yaml into a fresh database and returns its path.
func indexedDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "films.db")
	_, _, err := execute(t, "index", "testdata/films.yaml", "--db", db)
	require.NoError(t, err)
	return db
}
