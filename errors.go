package tokens

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfig matches every *ConfigError through errors.Is.
var ErrConfig = errors.New("tokens: configuration error")

var (
	// ErrDuplicateBreakpoint indicates two breakpoints share a name or width.
	ErrDuplicateBreakpoint = errors.New("tokens: duplicate breakpoint")
	// ErrInvalidBreakpoint indicates a breakpoint with an empty name, a negative
	// width or a reserved name.
	ErrInvalidBreakpoint = errors.New("tokens: invalid breakpoint")
	// ErrComponentRequired indicates a registration without a component type.
	ErrComponentRequired = errors.New("tokens: component type must be provided")
	// ErrDuplicateBase indicates a second base table for the same component.
	ErrDuplicateBase = errors.New("tokens: base table already registered")
	// ErrDuplicateSchema indicates a second schema for the same component.
	ErrDuplicateSchema = errors.New("tokens: schema already registered")
	// ErrUnknownBreakpoint indicates an override bound to an unregistered breakpoint.
	ErrUnknownBreakpoint = errors.New("tokens: unknown breakpoint")
	// ErrDuplicateOverride indicates a second fragment for the same
	// (component, breakpoint) pair.
	ErrDuplicateOverride = errors.New("tokens: override already registered")
	// ErrMissingLeaf indicates a table lacks a leaf its schema requires.
	ErrMissingLeaf = errors.New("tokens: required leaf missing")
	// ErrShapeMismatch indicates a table or fragment does not fit the declared
	// shape (extra leaves, kind changes, empty branches).
	ErrShapeMismatch = errors.New("tokens: token shape mismatch")
	// ErrUnknownComponent indicates a lookup for a component without a base.
	ErrUnknownComponent = errors.New("tokens: unknown component")
	// ErrGuard indicates an override guard failed to compile or evaluate.
	ErrGuard = errors.New("tokens: override guard failed")
	// ErrInvariant indicates a resolved table came out incomplete even though
	// registration validated it. It is a programming error.
	ErrInvariant = errors.New("tokens: resolved table violates schema")
)

// ErrorKind classifies configuration failures.
type ErrorKind string

const (
	KindDuplicateBreakpoint ErrorKind = "duplicate_breakpoint"
	KindInvalidBreakpoint   ErrorKind = "invalid_breakpoint"
	KindInvalidComponent    ErrorKind = "invalid_component"
	KindDuplicateBase       ErrorKind = "duplicate_base"
	KindDuplicateSchema     ErrorKind = "duplicate_schema"
	KindUnknownBreakpoint   ErrorKind = "unknown_breakpoint"
	KindDuplicateOverride   ErrorKind = "duplicate_override"
	KindMissingLeaf         ErrorKind = "missing_leaf"
	KindShapeMismatch       ErrorKind = "shape_mismatch"
	KindUnknownComponent    ErrorKind = "unknown_component"
	KindGuard               ErrorKind = "guard"
	KindIncomplete          ErrorKind = "incomplete"
)

// ConfigError captures the registration context alongside the originating
// error. Every configuration failure in this package is a *ConfigError.
type ConfigError struct {
	Kind       ErrorKind
	Component  string
	Breakpoint string
	Path       string
	Err        error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("tokens: config error")
	if e.Kind != "" {
		fmt.Fprintf(&b, " kind=%s", e.Kind)
	}
	if e.Component != "" {
		fmt.Fprintf(&b, " component=%q", e.Component)
	}
	if e.Breakpoint != "" {
		fmt.Fprintf(&b, " breakpoint=%q", e.Breakpoint)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " path=%q", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is makes errors.Is(err, ErrConfig) hold for every ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// IsInvariantViolation reports whether err signals an incomplete resolution,
// which callers should treat as unrecoverable.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariant)
}

func configError(kind ErrorKind, component, breakpoint, path string, err error) *ConfigError {
	return &ConfigError{
		Kind:       kind,
		Component:  component,
		Breakpoint: breakpoint,
		Path:       path,
		Err:        err,
	}
}
