package tokens

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-tokens/layering"
)

// Override is a partial token table bound to one breakpoint.
type Override struct {
	Breakpoint Breakpoint
	Fragment   Group
	// When is an optional guard expression; the fragment applies only when it
	// evaluates to true.
	When string

	guard *guard
}

// OverrideOption configures an override at registration.
type OverrideOption func(*Override)

// WithWhen guards the override with expr, evaluated by the store's Evaluator.
func WithWhen(expr string) OverrideOption {
	return func(o *Override) {
		o.When = strings.TrimSpace(expr)
	}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithGuardEvaluator sets the evaluator used to compile override guards.
func WithGuardEvaluator(evaluator Evaluator) StoreOption {
	return func(s *Store) {
		s.evaluator = evaluator
	}
}

// Store holds per-component base tables and override fragments. Bases and
// fragments are deep copied on registration and never mutated afterwards.
type Store struct {
	breakpoints *Breakpoints
	evaluator   Evaluator

	mu        sync.RWMutex
	schemas   map[string]Schema
	bases     map[string]Group
	overrides map[string]map[string]Override

	listenersMu sync.Mutex
	listeners   []storeListener
	nextID      uint64
}

type storeListener struct {
	id uint64
	fn func(component string)
}

// componentSnapshot is an internal read-only view used by the resolver.
type componentSnapshot struct {
	base      Group
	schema    Schema
	overrides []Override
}

// NewStore constructs an empty store bound to a breakpoint registry.
func NewStore(breakpoints *Breakpoints, opts ...StoreOption) *Store {
	s := &Store{
		breakpoints: breakpoints,
		evaluator:   NewExprEvaluator(),
		schemas:     map[string]Schema{},
		bases:       map[string]Group{},
		overrides:   map[string]map[string]Override{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Breakpoints returns the registry the store validates against.
func (s *Store) Breakpoints() *Breakpoints {
	return s.breakpoints
}

// RegisterSchema declares the required leaves for component. A base
// registered later must match it exactly; without a schema the base itself
// defines the shape.
func (s *Store) RegisterSchema(component string, schema Schema) error {
	component = strings.TrimSpace(component)
	if component == "" {
		return configError(KindInvalidComponent, "", "", "", ErrComponentRequired)
	}

	s.mu.Lock()
	if _, exists := s.schemas[component]; exists {
		s.mu.Unlock()
		return configError(KindDuplicateSchema, component, "", "", ErrDuplicateSchema)
	}
	if base, ok := s.bases[component]; ok {
		if err := schema.Check(base); err != nil {
			s.mu.Unlock()
			return schemaError(component, "", err)
		}
	}
	for name, override := range s.overrides[component] {
		if err := schema.CheckFragment(override.Fragment); err != nil {
			s.mu.Unlock()
			return schemaError(component, name, err)
		}
	}
	s.schemas[component] = schema
	s.mu.Unlock()

	s.notify(component)
	return nil
}

// RegisterBase stores the complete base table for component.
func (s *Store) RegisterBase(component string, table Group) error {
	component = strings.TrimSpace(component)
	if component == "" {
		return configError(KindInvalidComponent, "", "", "", ErrComponentRequired)
	}
	if err := layering.ValidateTable(table); err != nil {
		return treeError(component, "", err)
	}
	base := layering.Clone(table)

	s.mu.Lock()
	if _, exists := s.bases[component]; exists {
		s.mu.Unlock()
		return configError(KindDuplicateBase, component, "", "", ErrDuplicateBase)
	}
	if schema, ok := s.schemas[component]; ok {
		if err := schema.Check(base); err != nil {
			s.mu.Unlock()
			return schemaError(component, "", err)
		}
	}
	for _, name := range sortedOverrideNames(s.overrides[component]) {
		if err := layering.Conforms(base, s.overrides[component][name].Fragment); err != nil {
			s.mu.Unlock()
			return treeError(component, name, err)
		}
	}
	s.bases[component] = base
	s.mu.Unlock()

	s.notify(component)
	return nil
}

// RegisterOverride binds a partial table to a registered breakpoint.
func (s *Store) RegisterOverride(component, breakpoint string, fragment Group, opts ...OverrideOption) error {
	component = strings.TrimSpace(component)
	if component == "" {
		return configError(KindInvalidComponent, "", breakpoint, "", ErrComponentRequired)
	}
	bp, ok := s.breakpoints.Lookup(breakpoint)
	if !ok {
		return configError(KindUnknownBreakpoint, component, breakpoint, "", fmt.Errorf("%w: %q", ErrUnknownBreakpoint, breakpoint))
	}
	if err := layering.ValidateFragment(fragment); err != nil {
		return treeError(component, bp.Name, err)
	}

	override := Override{Breakpoint: bp, Fragment: layering.Clone(fragment)}
	if override.Fragment == nil {
		override.Fragment = Group{}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&override)
		}
	}
	compiled, err := compileGuard(s.evaluator, override.When)
	if err != nil {
		return configError(KindGuard, component, bp.Name, "", err)
	}
	override.guard = compiled

	s.mu.Lock()
	if _, exists := s.overrides[component][bp.Name]; exists {
		s.mu.Unlock()
		return configError(KindDuplicateOverride, component, bp.Name, "", ErrDuplicateOverride)
	}
	if base, ok := s.bases[component]; ok {
		if err := layering.Conforms(base, override.Fragment); err != nil {
			s.mu.Unlock()
			return treeError(component, bp.Name, err)
		}
	} else if schema, ok := s.schemas[component]; ok {
		if err := schema.CheckFragment(override.Fragment); err != nil {
			s.mu.Unlock()
			return schemaError(component, bp.Name, err)
		}
	}
	if s.overrides[component] == nil {
		s.overrides[component] = map[string]Override{}
	}
	s.overrides[component][bp.Name] = override
	s.mu.Unlock()

	s.notify(component)
	return nil
}

// Base returns a copy of the base table for component.
func (s *Store) Base(component string) (Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	base, ok := s.bases[component]
	if !ok {
		return nil, false
	}
	return layering.Clone(base), true
}

// Overrides returns copies of the fragments for component ordered ascending
// by breakpoint width.
func (s *Store) Overrides(component string) []Override {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ordered := orderedOverrides(s.overrides[component])
	for i := range ordered {
		ordered[i].Fragment = layering.Clone(ordered[i].Fragment)
	}
	return ordered
}

// Schema returns the declared schema for component, or the one derived from
// its base when none was declared.
func (s *Store) Schema(component string) (Schema, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schemaLocked(component)
}

func (s *Store) schemaLocked(component string) (Schema, bool) {
	if schema, ok := s.schemas[component]; ok {
		return schema, true
	}
	if base, ok := s.bases[component]; ok {
		return SchemaOf(base), true
	}
	return Schema{}, false
}

// Components lists component types with a registered base, sorted.
func (s *Store) Components() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.bases))
	for name := range s.bases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove drops every registration for component so it can be registered
// again. It exists for test environments that reload token tables.
func (s *Store) Remove(component string) bool {
	s.mu.Lock()
	_, hadBase := s.bases[component]
	_, hadSchema := s.schemas[component]
	_, hadOverrides := s.overrides[component]
	delete(s.bases, component)
	delete(s.schemas, component)
	delete(s.overrides, component)
	s.mu.Unlock()

	removed := hadBase || hadSchema || hadOverrides
	if removed {
		s.notify(component)
	}
	return removed
}

// OnChange subscribes fn to registration changes. The returned function
// unsubscribes.
func (s *Store) OnChange(fn func(component string)) func() {
	if fn == nil {
		return func() {}
	}
	s.listenersMu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, storeListener{id: id, fn: fn})
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		for i, listener := range s.listeners {
			if listener.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(component string) {
	s.listenersMu.Lock()
	listeners := make([]storeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()
	for _, listener := range listeners {
		listener.fn(component)
	}
}

func (s *Store) snapshot(component string) (componentSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	base, ok := s.bases[component]
	if !ok {
		return componentSnapshot{}, false
	}
	schema, _ := s.schemaLocked(component)
	return componentSnapshot{
		base:      base,
		schema:    schema,
		overrides: orderedOverrides(s.overrides[component]),
	}, true
}

func orderedOverrides(byName map[string]Override) []Override {
	if len(byName) == 0 {
		return nil
	}
	out := make([]Override, 0, len(byName))
	for _, override := range byName {
		out = append(out, override)
	}
	sort.Slice(out, func(i, j int) bool {
		return compareBreakpoints(out[i].Breakpoint, out[j].Breakpoint) < 0
	})
	return out
}

func sortedOverrideNames(byName map[string]Override) []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// treeError converts layering failures into ConfigErrors.
func treeError(component, breakpoint string, err error) error {
	var pathErr *layering.PathError
	path := ""
	if errors.As(err, &pathErr) {
		path = pathErr.Path
	}
	return configError(KindShapeMismatch, component, breakpoint, path, fmt.Errorf("%w: %w", ErrShapeMismatch, err))
}

// schemaError converts Schema.Check failures into ConfigErrors.
func schemaError(component, breakpoint string, err error) error {
	var pathErr *layering.PathError
	path := ""
	if errors.As(err, &pathErr) {
		path = pathErr.Path
		err = pathErr.Err
	}
	kind := KindShapeMismatch
	if errors.Is(err, ErrMissingLeaf) {
		kind = KindMissingLeaf
	}
	return configError(kind, component, breakpoint, path, err)
}
