package tokens

import (
	"errors"
	"fmt"
)

// EvaluationError captures guard evaluator metadata alongside the originating
// error. errors.Is(err, ErrGuard) holds for every EvaluationError.
type EvaluationError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("tokens: %s guard %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is makes errors.Is(err, ErrGuard) hold.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrGuard
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

// wrapGuardError attaches engine and expression metadata to err, filling the
// blanks of an existing EvaluationError instead of nesting a second one.
func wrapGuardError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		return err
	}
	return &EvaluationError{Engine: engine, Expr: expr, Err: err}
}
