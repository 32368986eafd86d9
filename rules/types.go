package rules

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Engine names an expression language.
type Engine string

const (
	EngineExpr Engine = "expr"
	EngineCEL  Engine = "cel"
	EngineJS   Engine = "js"
)

var (
	ErrUnknownEngine     = errors.New("rules: unknown engine")
	ErrEngineUnavailable = errors.New("rules: engine not compiled in")
	ErrEmptyExpression   = errors.New("rules: expression must not be empty")
)

// ParseEngine accepts engine names case-insensitively. An empty name selects
// expr.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EngineExpr:
		return EngineExpr, nil
	case EngineCEL:
		return EngineCEL, nil
	case EngineJS:
		return EngineJS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// Context carries the inputs of one evaluation.
type Context struct {
	// Vars are exposed as top-level identifiers.
	Vars     map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Label identifies the evaluated subject in errors and logs.
	Label string
}

func (ctx Context) withDefaults() Context {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Vars == nil {
		ctx.Vars = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx Context) label() string {
	if ctx.Label != "" {
		return ctx.Label
	}
	return "unknown"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (Compiled, error)
}

// Compiled is a reusable expression program.
type Compiled interface {
	Evaluate(ctx Context) (any, error)
}

// ProgramCache stores compiled programs keyed by engine and expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryCache is an unbounded, concurrency-safe ProgramCache.
type MemoryCache struct {
	programs sync.Map
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *MemoryCache) Set(key string, value any) {
	c.programs.Store(key, value)
}

func cacheKey(engine Engine, expr string) string {
	return string(engine) + ":" + expr
}

// Option configures evaluators built by New.
type Option func(*config)

type config struct {
	cache    ProgramCache
	registry *FunctionRegistry
	logger   EvaluatorLogger
}

// WithProgramCache shares compiled programs across evaluations.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes registry functions to expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry.Clone()
		}
	}
}

// WithLogger records every evaluation.
func WithLogger(logger EvaluatorLogger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// New builds an evaluator for engine.
func New(engine Engine, opts ...Option) (Evaluator, error) {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var evaluator Evaluator
	switch engine {
	case "", EngineExpr:
		engine = EngineExpr
		evaluator = &exprEvaluator{cache: cfg.cache, registry: cfg.registry}
	case EngineCEL:
		evaluator = &celEvaluator{cache: cfg.cache, registry: cfg.registry}
	case EngineJS:
		evaluator = newJSEvaluator(cfg)
		if evaluator == nil {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEngineUnavailable, engine)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}

	if cfg.logger == nil {
		return evaluator, nil
	}
	return &loggedEvaluator{engine: engine, next: evaluator, logger: cfg.logger}, nil
}

// Match evaluates expr and requires a boolean result.
func Match(evaluator Evaluator, ctx Context, expr string) (bool, error) {
	value, err := evaluator.Evaluate(ctx, expr)
	if err != nil {
		return false, err
	}
	return asBool(expr, ctx, value)
}

// MatchCompiled is Match for a precompiled rule.
func MatchCompiled(rule Compiled, ctx Context) (bool, error) {
	value, err := rule.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	return asBool("", ctx, value)
}

func asBool(expr string, ctx Context, value any) (bool, error) {
	matched, ok := value.(bool)
	if !ok {
		return false, annotate("", StageResult, expr, ctx.label(), fmt.Errorf("%w: got %T, want bool", ErrNotBool, value))
	}
	return matched, nil
}
