package rules_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-fitspire/rules"
)

func post() map[string]any {
	return map[string]any{
		"kind":     "gym",
		"title":    "Back Day",
		"duration": 45,
		"likes":    23,
		"liked":    false,
	}
}

func TestEnginesMatchPosts(t *testing.T) {
	cases := []struct {
		expr string
		want bool
	}{
		{`kind == "gym" && duration >= 45`, true},
		{`kind == "running"`, false},
		{`likes > 20 && !liked`, true},
		{`icontains(title, "back")`, true},
		{`fold(title) == "back day"`, true},
	}
	for _, engine := range []rules.Engine{rules.EngineExpr, rules.EngineCEL} {
		evaluator, err := rules.New(engine, rules.WithFunctionRegistry(rules.DefaultFunctions()))
		if err != nil {
			t.Fatalf("%s: new evaluator: %v", engine, err)
		}
		for _, tc := range cases {
			got, err := rules.Match(evaluator, rules.Context{Vars: post(), Label: "post:1"}, tc.expr)
			if err != nil {
				t.Fatalf("%s: %s: %v", engine, tc.expr, err)
			}
			if got != tc.want {
				t.Fatalf("%s: %s = %v, want %v", engine, tc.expr, got, tc.want)
			}
		}
	}
}

func TestCompiledRuleReuse(t *testing.T) {
	for _, engine := range []rules.Engine{rules.EngineExpr, rules.EngineCEL} {
		evaluator, _ := rules.New(engine)
		rule, err := evaluator.Compile(`duration < 40`)
		if err != nil {
			t.Fatalf("%s: compile: %v", engine, err)
		}
		short := post()
		short["duration"] = 30
		got, err := rules.MatchCompiled(rule, rules.Context{Vars: short})
		if err != nil || !got {
			t.Fatalf("%s: short post: got %v, %v", engine, got, err)
		}
		got, err = rules.MatchCompiled(rule, rules.Context{Vars: post()})
		if err != nil || got {
			t.Fatalf("%s: long post: got %v, %v", engine, got, err)
		}
	}
}

type countingCache struct {
	mu   sync.Mutex
	data map[string]any
	hits int
}

func (c *countingCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.data[key]
	if ok {
		c.hits++
	}
	return value, ok
}

func (c *countingCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[string]any{}
	}
	c.data[key] = value
}

func TestProgramCacheIsShared(t *testing.T) {
	cache := &countingCache{}
	exprEval, _ := rules.New(rules.EngineExpr, rules.WithProgramCache(cache))
	celEval, _ := rules.New(rules.EngineCEL, rules.WithProgramCache(cache))

	for i := 0; i < 3; i++ {
		if _, err := rules.Match(exprEval, rules.Context{Vars: post()}, `liked`); err != nil {
			t.Fatalf("expr: %v", err)
		}
		if _, err := rules.Match(celEval, rules.Context{Vars: post()}, `liked`); err != nil {
			t.Fatalf("cel: %v", err)
		}
	}
	if cache.hits != 4 {
		t.Fatalf("expected 4 cache hits, got %d", cache.hits)
	}
	if len(cache.data) != 2 {
		t.Fatalf("engines must not share cache entries, got %d keys", len(cache.data))
	}
}

func TestMemoryCache(t *testing.T) {
	cache := rules.NewMemoryCache()
	if _, ok := cache.Get("missing"); ok {
		t.Fatal("empty cache reported a hit")
	}
	cache.Set("k", 1)
	if v, ok := cache.Get("k"); !ok || v != 1 {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestNonBooleanResultIsAnError(t *testing.T) {
	evaluator, _ := rules.New(rules.EngineExpr)
	_, err := rules.Match(evaluator, rules.Context{Vars: post(), Label: "post:7"}, `duration + 1`)
	var evalErr *rules.EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Label != "post:7" || evalErr.Stage != rules.StageResult || !strings.Contains(err.Error(), "want bool") {
		t.Fatalf("unexpected error %v", err)
	}
	if !errors.Is(err, rules.ErrNotBool) || errors.Is(err, rules.ErrCompile) {
		t.Fatalf("unexpected error chain %v", err)
	}
}

func TestCompileErrorsCarryMetadata(t *testing.T) {
	for _, engine := range []rules.Engine{rules.EngineExpr, rules.EngineCEL} {
		evaluator, _ := rules.New(engine)
		_, err := evaluator.Evaluate(rules.Context{Vars: post()}, `kind ==`)
		var evalErr *rules.EvaluationError
		if !errors.As(err, &evalErr) {
			t.Fatalf("%s: expected EvaluationError, got %T %v", engine, err, err)
		}
		if evalErr.Engine != engine || evalErr.Stage != rules.StageCompile || evalErr.Expr != `kind ==` {
			t.Fatalf("%s: unexpected metadata %+v", engine, evalErr)
		}
		if !errors.Is(err, rules.ErrCompile) {
			t.Fatalf("%s: expected ErrCompile, got %v", engine, err)
		}
	}
}

func TestEmptyExpression(t *testing.T) {
	evaluator, _ := rules.New(rules.EngineExpr)
	if _, err := evaluator.Evaluate(rules.Context{}, ""); !errors.Is(err, rules.ErrEmptyExpression) {
		t.Fatalf("expected ErrEmptyExpression, got %v", err)
	}
	if _, err := evaluator.Compile(""); !errors.Is(err, rules.ErrEmptyExpression) {
		t.Fatalf("expected ErrEmptyExpression from compile, got %v", err)
	}
}

func TestParseEngine(t *testing.T) {
	cases := map[string]rules.Engine{"": rules.EngineExpr, "EXPR": rules.EngineExpr, "cel": rules.EngineCEL, " js ": rules.EngineJS}
	for in, want := range cases {
		got, err := rules.ParseEngine(in)
		if err != nil || got != want {
			t.Fatalf("ParseEngine(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := rules.ParseEngine("lua"); !errors.Is(err, rules.ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
	if _, err := rules.New("lua"); !errors.Is(err, rules.ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine from New, got %v", err)
	}
}

func TestJSEngineAvailability(t *testing.T) {
	evaluator, err := rules.New(rules.EngineJS, rules.WithFunctionRegistry(rules.DefaultFunctions()))
	if !rules.JSAvailable() {
		if !errors.Is(err, rules.ErrEngineUnavailable) {
			t.Fatalf("expected ErrEngineUnavailable, got %v", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("new js evaluator: %v", err)
	}
	got, err := rules.Match(evaluator, rules.Context{Vars: post()}, `kind === "gym" && icontains(title, "day")`)
	if err != nil || !got {
		t.Fatalf("js match: %v, %v", got, err)
	}
}

func TestLoggerRecordsEvaluations(t *testing.T) {
	var events []rules.LogEvent
	logger := rules.LoggerFunc(func(event rules.LogEvent) {
		events = append(events, event)
	})
	registry := rules.NewFunctionRegistry()
	_ = registry.Register("fail", func(...any) (any, error) { return nil, errors.New("nope") })
	evaluator, _ := rules.New(rules.EngineExpr, rules.WithLogger(logger), rules.WithFunctionRegistry(registry))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if _, err := evaluator.Evaluate(rules.Context{Vars: post(), Now: &now, Label: "post:1"}, `now.Year() == 2024`); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	_, _ = evaluator.Evaluate(rules.Context{Vars: post(), Label: "post:2"}, `fail()`)

	if len(events) != 2 {
		t.Fatalf("expected 2 log events, got %d", len(events))
	}
	if events[0].Engine != rules.EngineExpr || events[0].Label != "post:1" || events[0].Err != nil {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if events[1].Err == nil {
		t.Fatalf("expected second event to carry an error: %+v", events[1])
	}
}

func TestFunctionRegistry(t *testing.T) {
	registry := rules.NewFunctionRegistry()
	double := func(args ...any) (any, error) { return args[0].(int) * 2, nil }
	if err := registry.Register("Double", double); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("double", double); err == nil {
		t.Fatal("duplicate registration should fail")
	}
	if err := registry.Register("", double); err == nil {
		t.Fatal("empty name should fail")
	}
	if err := registry.Register("nil", nil); err == nil {
		t.Fatal("nil function should fail")
	}
	clone := registry.Clone()
	_ = clone.Register("extra", double)
	if names := registry.Names(); len(names) != 1 || names[0] != "double" {
		t.Fatalf("clone leaked into original: %v", names)
	}
	if v, err := registry.Call("DOUBLE", 4); err != nil || v != 8 {
		t.Fatalf("call: %v, %v", v, err)
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatal("missing function should fail")
	}
	var nilRegistry *rules.FunctionRegistry
	if _, err := nilRegistry.Call("x"); err == nil {
		t.Fatal("nil registry should fail")
	}
}

func TestExprVariablesShadowBuiltins(t *testing.T) {
	evaluator, _ := rules.New(rules.EngineExpr)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	vars := map[string]any{"duration": 45, "len": 3, "kind": "gym"}

	cases := []struct {
		expr string
		want bool
	}{
		{`duration >= 45`, true},
		{`duration == 45 && kind == "gym"`, true},
		{`len == 3`, true},
		{`now.Year() == 2024`, true},
	}
	for _, tc := range cases {
		got, err := rules.Match(evaluator, rules.Context{Vars: vars, Now: &now}, tc.expr)
		if err != nil {
			t.Fatalf("%s: %v", tc.expr, err)
		}
		if got != tc.want {
			t.Fatalf("%s = %v, want %v", tc.expr, got, tc.want)
		}
	}

	rule, err := evaluator.Compile(`duration > 30`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, err := rules.MatchCompiled(rule, rules.Context{Vars: vars})
	if err != nil || !got {
		t.Fatalf("compiled rule: got %v, %v", got, err)
	}
	if _, err := evaluator.Compile(`duration >`); err == nil {
		t.Fatal("expected syntax error from compile")
	}
}

func TestExprBuiltinsStayAvailableForOtherNames(t *testing.T) {
	evaluator, _ := rules.New(rules.EngineExpr)
	got, err := rules.Match(evaluator, rules.Context{Vars: map[string]any{"title": "Back Day"}}, `len(title) == 8`)
	if err != nil || !got {
		t.Fatalf("len builtin: got %v, %v", got, err)
	}
}
