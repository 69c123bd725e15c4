package tokens

import (
	"fmt"
)

// RuleContext carries the facts an override guard may inspect. Every field is
// fixed for a given (component, breakpoint) pair so guarded resolutions stay
// cacheable.
type RuleContext struct {
	Component  string
	Breakpoint Breakpoint
	Args       map[string]any
	Metadata   map[string]any
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) breakpointBinding() map[string]any {
	return map[string]any{
		"name":     ctx.Breakpoint.Name,
		"minWidth": ctx.Breakpoint.MinWidth,
	}
}

// variables returns the shared expression environment. Args are also exposed
// at the top level unless they collide with a reserved name.
func (ctx RuleContext) variables() map[string]any {
	env := map[string]any{
		"component":  ctx.Component,
		"breakpoint": ctx.breakpointBinding(),
		"args":       ctx.Args,
		"metadata":   ctx.Metadata,
	}
	for key, value := range ctx.Args {
		if _, reserved := env[key]; reserved {
			continue
		}
		env[key] = value
	}
	return env
}

// Evaluator executes guard expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable guard program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// guard binds a compiled rule to its source for error reporting.
type guard struct {
	engine string
	expr   string
	rule   CompiledRule
}

func compileGuard(evaluator Evaluator, expr string) (*guard, error) {
	if expr == "" {
		return nil, nil
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: no evaluator configured for %s", ErrGuard, describeExpression(expr))
	}
	engine := evaluatorEngineName(evaluator)
	rule, err := evaluator.Compile(expr)
	if err != nil {
		return nil, wrapGuardError(engine, expr, err)
	}
	return &guard{engine: engine, expr: expr, rule: rule}, nil
}

// allows reports whether the guarded fragment applies in ctx. A nil guard
// always allows.
func (g *guard) allows(ctx RuleContext) (bool, error) {
	if g == nil {
		return true, nil
	}
	value, err := g.rule.Evaluate(ctx.withDefaultMaps())
	if err != nil {
		return false, wrapGuardError(g.engine, g.expr, err)
	}
	switch typed := value.(type) {
	case bool:
		return typed, nil
	case nil:
		return false, nil
	default:
		return false, wrapGuardError(g.engine, g.expr, fmt.Errorf("guard returned %T, want bool", value))
	}
}

// namedEvaluator is implemented by the built-in evaluators.
type namedEvaluator interface {
	engine() string
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(namedEvaluator); ok {
		return named.engine()
	}
	return "custom"
}
