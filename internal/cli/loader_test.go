package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlq/internal/ir"
)

func TestLoadPlan_File(t *testing.T) {
	res, err := LoadPlan("testdata/plans/director.cue")
	require.NoError(t, err)

	assert.Equal(t, []string{"testdata/plans/director.cue"}, res.Files)
	assert.Equal(t, "Who directed Inception?", res.Plan.Question)
	assert.Equal(t, []ir.TriplePattern{"I1 P1 ?VAR1"}, res.Plan.Patterns)
	assert.Equal(t, []ir.Binding{
		{Kind: ir.KindInstance, Placeholder: "I1", Term: "Inception"},
		{Kind: ir.KindProperty, Placeholder: "P1", Term: "director"},
	}, res.Plan.Bindings)
}

func TestLoadPlan_NotFound(t *testing.T) {
	_, err := LoadPlan("testdata/plans/missing.cue")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	assert.Equal(t, ExitCommandError, loadErr.ExitCode())
}

func TestLoadPlan_EmptyDirectory(t *testing.T) {
	_, err := LoadPlan(t.TempDir())
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadPlan_MissingPlanField(t *testing.T) {
	_, err := LoadPlan("testdata/plans/noplan.cue")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodePlanMissing, loadErr.Code)
	assert.Equal(t, ExitFailure, loadErr.ExitCode())
}

func TestLoadPlan_SchemaViolation(t *testing.T) {
	_, err := LoadPlan("testdata/plans/badkind.cue")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodePlanSchema, loadErr.Code)
	assert.Equal(t, ExitFailure, loadErr.ExitCode())
}

func TestLoadPlan_SyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.cue")
	require.NoError(t, os.WriteFile(path, []byte("plan: {patterns: [\n"), 0644))

	_, err := LoadPlan(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodePlanSchema, loadErr.Code)
}

func TestFindCUEFiles(t *testing.T) {
	files, err := FindCUEFiles("testdata/plans")
	require.NoError(t, err)
	assert.Contains(t, files, filepath.Join("testdata", "plans", "director.cue"))
	for _, f := range files {
		assert.Equal(t, ".cue", filepath.Ext(f))
	}
}

func TestMapCompileField(t *testing.T) {
	assert.Equal(t, ErrCodePlanMissing, mapCompileField("plan"))
	assert.Equal(t, ErrCodePlanKind, mapCompileField("bindings.I1.kind"))
	assert.Equal(t, ErrCodePlanSchema, mapCompileField("cue"))
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Code: ErrCodeNotFound, Message: "plan not found: x.cue"}
	assert.Equal(t, "E005: plan not found: x.cue", err.Error())
}
