package tokens

import (
	"errors"
	"testing"
)

func TestWrapGuardErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapGuardError("expr", "theme == 'dark' && missing", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" || evalErr.Expr != "theme == 'dark' && missing" {
		t.Fatalf("unexpected metadata: %+v", evalErr)
	}
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
	if !errors.Is(err, ErrGuard) {
		t.Fatalf("expected ErrGuard match")
	}
}

func TestWrapGuardErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: "expr", Err: base}

	err := wrapGuardError("cel", "rule", existing)
	if err != error(existing) {
		t.Fatalf("expected existing error to be returned")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
}

func TestWrapGuardErrorNil(t *testing.T) {
	if err := wrapGuardError("expr", "x", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestConfigErrorMatchesErrConfig(t *testing.T) {
	err := configError(KindDuplicateBase, "button", "", "", ErrDuplicateBase)
	if !errors.Is(err, ErrConfig) || !errors.Is(err, ErrDuplicateBase) {
		t.Fatalf("expected ConfigError to match ErrConfig and its cause, got %v", err)
	}
	want := `tokens: config error kind=duplicate_base component="button": tokens: base table already registered`
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if IsInvariantViolation(err) {
		t.Fatalf("duplicate base is not an invariant violation")
	}
}
