package rules

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names the step at which a rule failed.
type Stage string

const (
	StageCompile  Stage = "compile"
	StageEvaluate Stage = "evaluate"
	// StageResult means the rule ran but its value was unusable.
	StageResult Stage = "result"
)

var (
	// ErrCompile matches any EvaluationError raised while compiling.
	ErrCompile = errors.New("rules: compile failed")
	ErrNotBool = errors.New("rules: rule did not return a bool")
)

// EvaluationError reports a failed rule together with the engine, stage,
// source text and subject it was evaluated against.
type EvaluationError struct {
	Engine Engine
	Stage  Stage
	Expr   string
	Label  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("rules:")
	if e.Engine != "" {
		b.WriteString(" " + string(e.Engine))
	}
	if e.Stage != "" {
		b.WriteString(" " + string(e.Stage))
	}
	if e.Label != "" {
		b.WriteString(" [" + e.Label + "]")
	}
	if e.Expr != "" {
		fmt.Fprintf(&b, " %q", shorten(e.Expr, 60))
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports compile failures as ErrCompile.
func (e *EvaluationError) Is(target error) bool {
	return e != nil && target == ErrCompile && e.Stage == StageCompile
}

func shorten(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func compileError(engine Engine, expr string, err error) error {
	return annotate(engine, StageCompile, expr, "", err)
}

func evaluateError(engine Engine, expr, label string, err error) error {
	return annotate(engine, StageEvaluate, expr, label, err)
}

// annotate fills the blanks of an existing EvaluationError in err's chain, so
// wrappers such as the logging evaluator never nest a second one.
func annotate(engine Engine, stage Stage, expr, label string, err error) error {
	if err == nil {
		return nil
	}
	var existing *EvaluationError
	if errors.As(err, &existing) {
		if existing.Engine == "" {
			existing.Engine = engine
		}
		if existing.Stage == "" {
			existing.Stage = stage
		}
		if existing.Expr == "" {
			existing.Expr = expr
		}
		if existing.Label == "" {
			existing.Label = label
		}
		return err
	}
	return &EvaluationError{Engine: engine, Stage: stage, Expr: expr, Label: label, Err: err}
}
