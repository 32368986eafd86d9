package rules

import (
	"time"

	"go.uber.org/zap"
)

// LogEvent describes an evaluation attempt.
type LogEvent struct {
	Engine   Engine
	Expr     string
	Label    string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(LogEvent)
}

// LoggerFunc adapts a function to EvaluatorLogger.
type LoggerFunc func(LogEvent)

func (f LoggerFunc) LogEvaluation(event LogEvent) {
	if f != nil {
		f(event)
	}
}

// ZapLogger logs successful evaluations at debug and failures at warn.
func ZapLogger(logger *zap.Logger) EvaluatorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return LoggerFunc(func(event LogEvent) {
		fields := []zap.Field{
			zap.String("engine", string(event.Engine)),
			zap.String("expr", event.Expr),
			zap.String("subject", event.Label),
			zap.Duration("duration", event.Duration),
		}
		if event.Err != nil {
			logger.Warn("rule evaluation failed", append(fields, zap.Error(event.Err))...)
			return
		}
		logger.Debug("rule evaluated", fields...)
	})
}

type loggedEvaluator struct {
	engine Engine
	next   Evaluator
	logger EvaluatorLogger
}

func (l *loggedEvaluator) Evaluate(ctx Context, expr string) (any, error) {
	start := time.Now()
	value, err := l.next.Evaluate(ctx, expr)
	err = evaluateError(l.engine, expr, ctx.label(), err)
	l.logger.LogEvaluation(LogEvent{
		Engine:   l.engine,
		Expr:     expr,
		Label:    ctx.label(),
		Duration: time.Since(start),
		Err:      err,
	})
	return value, err
}

func (l *loggedEvaluator) Compile(expr string) (Compiled, error) {
	rule, err := l.next.Compile(expr)
	if err != nil {
		err = compileError(l.engine, expr, err)
		l.logger.LogEvaluation(LogEvent{Engine: l.engine, Expr: expr, Label: "compile", Err: err})
		return nil, err
	}
	return &loggedRule{parent: l, expr: expr, next: rule}, nil
}

type loggedRule struct {
	parent *loggedEvaluator
	expr   string
	next   Compiled
}

func (r *loggedRule) Evaluate(ctx Context) (any, error) {
	start := time.Now()
	value, err := r.next.Evaluate(ctx)
	err = evaluateError(r.parent.engine, r.expr, ctx.label(), err)
	r.parent.logger.LogEvaluation(LogEvent{
		Engine:   r.parent.engine,
		Expr:     r.expr,
		Label:    ctx.label(),
		Duration: time.Since(start),
		Err:      err,
	})
	return value, err
}
