package rules

import (
	"errors"
	"strings"
	"testing"
)

func TestEvaluateErrorCarriesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := evaluateError(EngineExpr, "liked && missing", "post:1", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != EngineExpr || evalErr.Stage != StageEvaluate || evalErr.Expr != "liked && missing" || evalErr.Label != "post:1" {
		t.Fatalf("unexpected metadata %+v", evalErr)
	}
	if !errors.Is(err, base) {
		t.Fatal("wrapped error should unwrap to base error")
	}
	if errors.Is(err, ErrCompile) {
		t.Fatal("evaluate failures are not compile failures")
	}
	want := `rules: expr evaluate [post:1] "liked && missing": boom`
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestAnnotateFillsExistingError(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: EngineExpr, Stage: StageCompile, Err: base}

	err := evaluateError(EngineCEL, "rule", "post:9", existing)
	if err != error(existing) {
		t.Fatalf("existing error should be returned, got %v", err)
	}
	if existing.Engine != EngineExpr || existing.Stage != StageCompile {
		t.Fatalf("set fields should not be overwritten, got %+v", existing)
	}
	if existing.Expr != "rule" || existing.Label != "post:9" {
		t.Fatalf("missing metadata should be filled, got %+v", existing)
	}
	if !errors.Is(err, ErrCompile) || !errors.Is(err, base) {
		t.Fatalf("unexpected chain %v", err)
	}
}

func TestCompileErrorMessage(t *testing.T) {
	if compileError(EngineExpr, "x", nil) != nil {
		t.Fatal("nil should stay nil")
	}
	err := compileError(EngineCEL, "", ErrEmptyExpression)
	if !errors.Is(err, ErrEmptyExpression) || !errors.Is(err, ErrCompile) {
		t.Fatalf("unexpected chain %v", err)
	}
	if err.Error() != "rules: cel compile: rules: expression must not be empty" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	long := strings.Repeat("likes > 1 && ", 10) + "liked"
	msg := compileError(EngineExpr, long, errors.New("bad")).Error()
	if strings.Contains(msg, long) || !strings.Contains(msg, `..."`) {
		t.Fatalf("long expressions should be shortened: %q", msg)
	}
}
