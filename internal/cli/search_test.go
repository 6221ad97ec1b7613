package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCommand_Instance(t *testing.T) {
	db := indexedDB(t)

	out, _, err := execute(t, "search", "Chris Nolan", "--db", db)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "1.000  instance  person:nolan  Christopher Nolan", lines[0])
}

func TestSearchCommand_Pivot(t *testing.T) {
	db := indexedDB(t)

	out, _, err := execute(t, "search", "director", "--db", db, "--pivot", "film:inception", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   SearchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "embedding", resp.Data.Strategy)
	assert.Equal(t, "film:inception", resp.Data.Pivot)
	require.NotEmpty(t, resp.Data.Candidates)
	assert.Equal(t, "prop:director", resp.Data.Candidates[0].ID)

	for _, c := range resp.Data.Candidates {
		assert.Contains(t, []string{"class:film", "prop:director", "prop:starring"}, c.ID)
	}
}

func TestSearchCommand_SemanticUnscoped(t *testing.T) {
	db := indexedDB(t)

	out, _, err := execute(t, "search", "birth place", "--db", db, "--semantic", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data SearchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data.Candidates)
	assert.Equal(t, "prop:birthplace", resp.Data.Candidates[0].ID)
	assert.Empty(t, resp.Data.Pivot)
}

func TestSearchCommand_Threshold(t *testing.T) {
	db := indexedDB(t)

	out, _, err := execute(t, "search", "birth place", "--db", db, "--semantic", "--threshold", "0.99", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data SearchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Candidates, 1)
	assert.Equal(t, "prop:birthplace", resp.Data.Candidates[0].ID)
}

func TestSearchCommand_InvalidThreshold(t *testing.T) {
	db := indexedDB(t)

	_, _, err := execute(t, "search", "x", "--db", db, "--threshold", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSearchCommand_NoCandidates(t *testing.T) {
	db := indexedDB(t)

	out, _, err := execute(t, "search", "Zzyzx Qwerty", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No candidates for \"Zzyzx Qwerty\".\n", out)
}

func TestSearchCommand_UnknownPivot(t *testing.T) {
	db := indexedDB(t)

	out, _, err := execute(t, "search", "director", "--db", db, "--pivot", "film:memento")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "pivot entity not found: film:memento")
}
