package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/nlq/internal/compiler"
	"github.com/roach88/nlq/internal/queryir"
)

// Plan compilation error codes.
const (
	ErrCodePlanMissing = "E101" // No plan field in the document
	ErrCodePlanKind    = "E102" // Binding kind not one of the five kinds
	ErrCodePlanSchema  = "E103" // Document does not satisfy the plan schema
)

// LoadResult contains a compiled plan and the files it came from.
type LoadResult struct {
	Plan  *queryir.Plan
	Files []string
}

// LoadError represents an error that occurred during plan loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ExitCode maps the error to a CLI exit code: plan compilation errors are
// failures, everything else is a command error.
func (e *LoadError) ExitCode() int {
	if strings.HasPrefix(e.Code, "E1") {
		return ExitFailure
	}
	return ExitCommandError
}

// LoadPlan compiles the plan at path. path is either a single .cue file or
// a directory whose CUE files together define a top-level plan field.
func LoadPlan(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("plan not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing plan: %v", err)}
	}

	if !info.IsDir() {
		return loadPlanFile(path)
	}
	return loadPlanDir(path)
}

func loadPlanFile(path string) (*LoadResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading plan: %v", err)}
	}

	plan, err := compiler.CompileSource(cuecontext.New(), src, path)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return &LoadResult{Plan: plan, Files: []string{path}}, nil
}

func loadPlanDir(dir string) (*LoadResult, error) {
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	plan, err := compiler.CompilePlan(value.LookupPath(cue.ParsePath(compiler.PlanField)))
	if err != nil {
		return nil, convertCompileError(err)
	}
	return &LoadResult{Plan: plan, Files: cueFiles}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    mapCompileField(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodePlanSchema, Message: err.Error()}
}

// mapCompileField maps a CompileError field to an error code.
func mapCompileField(field string) string {
	switch {
	case field == compiler.PlanField:
		return ErrCodePlanMissing
	case strings.HasSuffix(field, ".kind"):
		return ErrCodePlanKind
	default:
		return ErrCodePlanSchema
	}
}
