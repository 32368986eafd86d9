package rules

import (
	"sort"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprparser "github.com/expr-lang/expr/parser"
	exprvm "github.com/expr-lang/expr/vm"
)

// reservedNames are always present in the evaluation environment.
var reservedNames = []string{"now", "args", "metadata"}

// exprEvaluator executes expressions using github.com/expr-lang/expr.
// Programs are compiled against the variable names in the context so that a
// variable always shadows an expr builtin of the same name (duration, now).
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

func (e *exprEvaluator) Evaluate(ctx Context, expression string) (any, error) {
	if expression == "" {
		return nil, compileError(EngineExpr, "", ErrEmptyExpression)
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression, ctx.Vars)
	if err != nil {
		return nil, err
	}
	return e.run(program, expression, ctx)
}

// Compile checks the syntax up front. The program itself is built on first
// use, once the variable names are known.
func (e *exprEvaluator) Compile(expression string) (Compiled, error) {
	if expression == "" {
		return nil, compileError(EngineExpr, "", ErrEmptyExpression)
	}
	if _, err := exprparser.Parse(expression); err != nil {
		return nil, compileError(EngineExpr, expression, err)
	}
	return &exprRule{evaluator: e, expression: expression}, nil
}

func (e *exprEvaluator) run(program *exprvm.Program, expression string, ctx Context) (any, error) {
	result, err := exprlang.Run(program, e.environment(ctx))
	if err != nil {
		return nil, evaluateError(EngineExpr, expression, ctx.label(), err)
	}
	return result, nil
}

func (e *exprEvaluator) loadOrCompile(expression string, vars map[string]any) (*exprvm.Program, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	key := cacheKey(EngineExpr, strings.Join(names, ",")+"|"+expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}

	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range reservedNames {
		options = append(options, exprlang.DisableBuiltin(name))
	}
	for _, name := range names {
		options = append(options, exprlang.DisableBuiltin(name))
	}
	for _, name := range e.registry.Names() {
		fn := name
		options = append(options, exprlang.Function(fn, func(arguments ...any) (any, error) {
			return e.registry.Call(fn, arguments...)
		}))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, compileError(EngineExpr, expression, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *exprEvaluator) environment(ctx Context) map[string]any {
	env := map[string]any{
		"now":      *ctx.Now,
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	for key, value := range ctx.Vars {
		env[key] = value
	}
	return env
}

type exprRule struct {
	evaluator  *exprEvaluator
	expression string
}

func (r *exprRule) Evaluate(ctx Context) (any, error) {
	ctx = ctx.withDefaults()
	program, err := r.evaluator.loadOrCompile(r.expression, ctx.Vars)
	if err != nil {
		return nil, err
	}
	return r.evaluator.run(program, r.expression, ctx)
}
