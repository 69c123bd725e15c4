package tokens

import (
	"fmt"
	"time"

	"github.com/goliatone/go-tokens/layering"
	"github.com/google/uuid"
)

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// ResolverWithArgs exposes args to override guards.
func ResolverWithArgs(args map[string]any) ResolverOption {
	return func(r *Resolver) {
		r.args = cloneAnyMap(args)
	}
}

// ResolverWithMetadata exposes metadata to override guards.
func ResolverWithMetadata(metadata map[string]any) ResolverOption {
	return func(r *Resolver) {
		r.metadata = cloneAnyMap(metadata)
	}
}

// ResolverWithLogger records every resolution.
func ResolverWithLogger(logger ResolveLogger) ResolverOption {
	return func(r *Resolver) {
		if logger == nil {
			r.logger = noopResolveLogger{}
			return
		}
		r.logger = logger
	}
}

// Resolver folds a component's base table with every applicable override.
// It performs no caching.
type Resolver struct {
	store    *Store
	args     map[string]any
	metadata map[string]any
	logger   ResolveLogger
	now      func() time.Time
}

// NewResolver constructs a resolver over store.
func NewResolver(store *Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:  store,
		logger: noopResolveLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve returns the complete table for component at the active breakpoint.
// Overrides apply when their breakpoint's MinWidth does not exceed the active
// one and their guard (if any) holds; stronger breakpoints win per leaf.
func (r *Resolver) Resolve(component string, active Breakpoint) (*Resolved, error) {
	started := r.now()
	resolved, err := r.resolve(component, active)
	r.logger.LogResolve(ResolveLogEvent{
		Op:         "resolve",
		Component:  component,
		Breakpoint: active.Name,
		Duration:   r.now().Sub(started),
		Err:        err,
	})
	return resolved, err
}

func (r *Resolver) resolve(component string, active Breakpoint) (*Resolved, error) {
	snap, ok := r.store.snapshot(component)
	if !ok {
		return nil, configError(KindUnknownComponent, component, active.Name, "", fmt.Errorf("%w: %q", ErrUnknownComponent, component))
	}

	applicable, err := r.applicable(component, active, snap.overrides)
	if err != nil {
		return nil, err
	}

	fragments := make([]Group, 0, len(applicable))
	applied := make([]string, 0, len(applicable))
	for _, override := range applicable {
		fragments = append(fragments, override.Fragment)
		applied = append(applied, override.Breakpoint.Name)
	}

	merged, err := layering.Fold(snap.base, fragments...)
	if err != nil {
		return nil, invariantError(component, active.Name, err)
	}
	if err := snap.schema.Check(merged); err != nil {
		return nil, invariantError(component, active.Name, err)
	}

	return &Resolved{
		Component:  component,
		Breakpoint: active,
		Applied:    applied,
		Epoch:      uuid.New(),
		tokens:     merged,
	}, nil
}

// applicable filters overrides (already ordered weakest first) down to those
// whose breakpoint qualifies and whose guard allows them.
func (r *Resolver) applicable(component string, active Breakpoint, overrides []Override) ([]Override, error) {
	out := make([]Override, 0, len(overrides))
	for _, override := range overrides {
		if compareBreakpoints(override.Breakpoint, active) > 0 {
			continue
		}
		ok, err := override.guard.allows(r.ruleContext(component, active))
		if err != nil {
			return nil, configError(KindGuard, component, override.Breakpoint.Name, "", err)
		}
		if ok {
			out = append(out, override)
		}
	}
	return out, nil
}

func (r *Resolver) ruleContext(component string, bp Breakpoint) RuleContext {
	return RuleContext{
		Component:  component,
		Breakpoint: bp,
		Args:       r.args,
		Metadata:   r.metadata,
	}
}

func invariantError(component, breakpoint string, err error) error {
	var path string
	if pathErr, ok := err.(*layering.PathError); ok {
		path = pathErr.Path
	}
	return configError(KindIncomplete, component, breakpoint, path, fmt.Errorf("%w: %w", ErrInvariant, err))
}

func cloneAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
