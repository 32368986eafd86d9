//go:build js_eval

package rules

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsEvaluator executes JavaScript expressions using goja. Every evaluation
// runs on a fresh runtime.
type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

func newJSEvaluator(cfg config) Evaluator {
	return &jsEvaluator{cache: cfg.cache, registry: cfg.registry}
}

// JSAvailable reports whether the js engine is compiled in.
func JSAvailable() bool {
	return true
}

func (e *jsEvaluator) Evaluate(ctx Context, expression string) (any, error) {
	if expression == "" {
		return nil, compileError(EngineJS, "", ErrEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return e.run(program, expression, ctx)
}

func (e *jsEvaluator) Compile(expression string) (Compiled, error) {
	if expression == "" {
		return nil, compileError(EngineJS, "", ErrEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsRule{evaluator: e, expression: expression, program: program}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	key := cacheKey(EngineJS, expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", fmt.Sprintf("(function(){ return (%s); })()", expression), false)
	if err != nil {
		return nil, compileError(EngineJS, expression, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(program *goja.Program, expression string, ctx Context) (any, error) {
	ctx = ctx.withDefaults()
	vm := goja.New()
	_ = vm.Set("now", *ctx.Now)
	_ = vm.Set("args", ctx.Args)
	_ = vm.Set("metadata", ctx.Metadata)
	for key, value := range ctx.Vars {
		_ = vm.Set(key, value)
	}
	for _, name := range e.registry.Names() {
		fn := name
		_ = vm.Set(fn, func(arguments ...any) (any, error) {
			return e.registry.Call(fn, arguments...)
		})
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, evaluateError(EngineJS, expression, ctx.label(), err)
	}
	return value.Export(), nil
}

type jsRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsRule) Evaluate(ctx Context) (any, error) {
	return r.evaluator.run(r.program, r.expression, ctx)
}
