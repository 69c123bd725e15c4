package tokens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-tokens/pkg/activity"
)

// Guard evaluator engine names accepted by WithEvaluatorEngine.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	evaluator      Evaluator
	engineName     string
	programCache   ProgramCache
	registry       *FunctionRegistry
	args           map[string]any
	metadata       map[string]any
	logger         ResolveLogger
	debounce       time.Duration
	initialWidth   int
	activityHooks  activity.Hooks
	activityConfig activity.Config
	viewportID     string
	err            error
}

// WithEvaluator sets the guard evaluator. It takes precedence over
// WithEvaluatorEngine.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *engineConfig) {
		cfg.evaluator = e
	}
}

// WithEvaluatorEngine selects a built-in guard evaluator by name: "expr"
// (default), "cel" or "js". The js engine requires the js_eval build tag.
func WithEvaluatorEngine(name string) Option {
	return func(cfg *engineConfig) {
		cfg.engineName = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithProgramCache shares compiled guard programs across evaluators.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *engineConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry exposes registry functions to guard expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *engineConfig) {
		cfg.registry = registry
	}
}

// WithCustomFunction registers a single guard function. Registration errors
// surface from New.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *engineConfig) {
		if cfg.registry == nil {
			cfg.registry = NewFunctionRegistry()
		}
		if err := cfg.registry.Register(name, fn); err != nil && cfg.err == nil {
			cfg.err = err
		}
	}
}

// WithArgs sets the static facts guards see as args (theme, reduced motion).
func WithArgs(args map[string]any) Option {
	return func(cfg *engineConfig) {
		cfg.args = cloneAnyMap(args)
	}
}

// WithMetadata sets the static metadata guards see.
func WithMetadata(metadata map[string]any) Option {
	return func(cfg *engineConfig) {
		cfg.metadata = cloneAnyMap(metadata)
	}
}

// WithResolveLogger records resolutions and cache activity.
func WithResolveLogger(logger ResolveLogger) Option {
	return func(cfg *engineConfig) {
		cfg.logger = logger
	}
}

// WithViewportDebounce sets the observer settle delay.
func WithViewportDebounce(delay time.Duration) Option {
	return func(cfg *engineConfig) {
		cfg.debounce = delay
	}
}

// WithViewportWidth seeds the viewport width before the first sample.
func WithViewportWidth(width int) Option {
	return func(cfg *engineConfig) {
		cfg.initialWidth = width
	}
}

// WithActivityHooks emits registration and breakpoint events to hooks.
func WithActivityHooks(hooks activity.Hooks, cfg activity.Config) Option {
	return func(c *engineConfig) {
		c.activityHooks = append(activity.Hooks(nil), hooks...)
		c.activityConfig = cfg
		c.activityConfig.Enabled = true
	}
}

// WithViewportID names the viewport in breakpoint events.
func WithViewportID(id string) Option {
	return func(cfg *engineConfig) {
		cfg.viewportID = id
	}
}

func applyOptions(opts []Option) engineConfig {
	cfg := engineConfig{
		logger:   noopResolveLogger{},
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopResolveLogger{}
	}
	return cfg
}

func (cfg engineConfig) buildEvaluator() (Evaluator, error) {
	if cfg.evaluator != nil {
		return cfg.evaluator, nil
	}
	switch cfg.engineName {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(cfg.programCache), ExprWithFunctionRegistry(cfg.registry)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cfg.programCache), CELWithFunctionRegistry(cfg.registry)), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, configError(KindGuard, "", "", "", fmt.Errorf("%w: js evaluator requires the js_eval build tag", ErrGuard))
		}
		return NewJSEvaluator(JSWithProgramCache(cfg.programCache), JSWithFunctionRegistry(cfg.registry)), nil
	default:
		return nil, configError(KindGuard, "", "", "", fmt.Errorf("%w: unknown evaluator engine %q", ErrGuard, cfg.engineName))
	}
}

// Engine wires the store, resolver, cache and viewport observer together.
type Engine struct {
	breakpoints *Breakpoints
	store       *Store
	resolver    *Resolver
	cache       *Cache
	observer    *Observer
	emitter     *activity.Emitter
	logger      ResolveLogger
	viewportID  string

	stopStore    func()
	stopActivity func()
}

// New constructs an Engine over breakpoints.
func New(breakpoints *Breakpoints, opts ...Option) (*Engine, error) {
	cfg := applyOptions(opts)
	if cfg.err != nil {
		return nil, cfg.err
	}
	evaluator, err := cfg.buildEvaluator()
	if err != nil {
		return nil, err
	}

	cache := NewCache()
	store := NewStore(breakpoints, WithGuardEvaluator(evaluator))
	e := &Engine{
		breakpoints: breakpoints,
		store:       store,
		resolver: NewResolver(store,
			ResolverWithArgs(cfg.args),
			ResolverWithMetadata(cfg.metadata),
			ResolverWithLogger(cfg.logger),
		),
		cache: cache,
		observer: NewObserver(breakpoints,
			WithDebounce(cfg.debounce),
			WithInitialWidth(cfg.initialWidth),
			WithInvalidator(cache),
		),
		emitter:    activity.NewEmitter(cfg.activityHooks, cfg.activityConfig),
		logger:     cfg.logger,
		viewportID: cfg.viewportID,
	}
	e.stopStore = store.OnChange(cache.Invalidate)
	e.stopActivity = e.observer.OnBreakpointChange(e.emitBreakpointChange)
	return e, nil
}

// MustNew is like New but panics on error.
func MustNew(breakpoints *Breakpoints, opts ...Option) *Engine {
	e, err := New(breakpoints, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Breakpoints returns the registry the engine resolves against.
func (e *Engine) Breakpoints() *Breakpoints { return e.breakpoints }

// Store exposes the token table store.
func (e *Engine) Store() *Store { return e.store }

// Cache exposes the resolution cache.
func (e *Engine) Cache() *Cache { return e.cache }

// Observer exposes the viewport observer.
func (e *Engine) Observer() *Observer { return e.observer }

// RegisterSchema declares the required leaves for component.
func (e *Engine) RegisterSchema(component string, schema Schema) error {
	return e.store.RegisterSchema(component, schema)
}

// RegisterBase stores the complete base table for component.
func (e *Engine) RegisterBase(component string, table Group) error {
	if err := e.store.RegisterBase(component, table); err != nil {
		return err
	}
	e.emit(activity.BuildBaseRegisteredEvent(activity.RegistrationInput{
		Component: component,
		Leaves:    table.Len(),
	}))
	return nil
}

// RegisterOverride binds fragment to breakpoint for component.
func (e *Engine) RegisterOverride(component, breakpoint string, fragment Group, opts ...OverrideOption) error {
	if err := e.store.RegisterOverride(component, breakpoint, fragment, opts...); err != nil {
		return err
	}
	input := activity.RegistrationInput{
		Component:  component,
		Breakpoint: breakpoint,
		Leaves:     fragment.Len(),
	}
	settings := Override{}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	input.Guard = settings.When
	e.emit(activity.BuildOverrideRegisteredEvent(input))
	return nil
}

// Remove drops every registration for component.
func (e *Engine) Remove(component string) bool {
	removed := e.store.Remove(component)
	if removed {
		e.emit(activity.BuildComponentRemovedEvent(component, time.Time{}))
	}
	return removed
}

// Resolve returns the table for component at the current viewport.
func (e *Engine) Resolve(component string) (*Resolved, error) {
	return e.ResolveAt(component, e.observer.Active())
}

// ResolveWidth returns the table for component at an arbitrary width without
// touching the observer.
func (e *Engine) ResolveWidth(component string, width int) (*Resolved, error) {
	return e.ResolveAt(component, e.breakpoints.Active(width))
}

// ResolveAt returns the cached table for component at bp. Only bp.Name is
// read; the registered definition supplies the width.
func (e *Engine) ResolveAt(component string, bp Breakpoint) (*Resolved, error) {
	bp, err := e.registered(component, bp)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	resolved, hit, err := e.cache.Get(component, bp.Name, func() (*Resolved, error) {
		return e.resolver.Resolve(component, bp)
	})
	if hit {
		e.logger.LogResolve(ResolveLogEvent{
			Op:         "cache",
			Component:  component,
			Breakpoint: bp.Name,
			CacheHit:   true,
			Duration:   time.Since(started),
		})
	}
	return resolved, err
}

func (e *Engine) registered(component string, bp Breakpoint) (Breakpoint, error) {
	registered, ok := e.breakpoints.Lookup(bp.Name)
	if !ok {
		return Breakpoint{}, configError(KindUnknownBreakpoint, component, bp.Name, "", fmt.Errorf("%w: %q", ErrUnknownBreakpoint, bp.Name))
	}
	return registered, nil
}

// MustResolve is like Resolve but panics on error. Registration validation
// makes resolve failures programming errors, so this suits render paths.
func (e *Engine) MustResolve(component string) *Resolved {
	resolved, err := e.Resolve(component)
	if err != nil {
		panic(err)
	}
	return resolved
}

// Use calls fn with the current table immediately and again after every
// breakpoint change. The cache is already invalidated when fn runs.
func (e *Engine) Use(component string, fn func(*Resolved, error)) func() {
	if fn == nil {
		return func() {}
	}
	unsubscribe := e.observer.OnBreakpointChange(func(change BreakpointChange) {
		fn(e.ResolveAt(component, change.Current))
	})
	fn(e.Resolve(component))
	return unsubscribe
}

// OnBreakpointChange subscribes to settled breakpoint changes.
func (e *Engine) OnBreakpointChange(listener BreakpointListener) func() {
	return e.observer.OnBreakpointChange(listener)
}

// Sample feeds a viewport width reading to the observer.
func (e *Engine) Sample(width int) {
	e.observer.Sample(width)
}

// Flush settles a pending viewport sample immediately.
func (e *Engine) Flush() bool {
	return e.observer.Flush()
}

// Active returns the breakpoint for the last settled viewport width.
func (e *Engine) Active() Breakpoint {
	return e.observer.Active()
}

// Close stops the observer and detaches the cache from the store.
func (e *Engine) Close() {
	e.stopActivity()
	e.stopStore()
	e.observer.Close()
}

func (e *Engine) emitBreakpointChange(change BreakpointChange) {
	e.emit(activity.BuildBreakpointChangedEvent(activity.BreakpointChangeInput{
		ViewportID: e.viewportID,
		Previous:   change.Previous.Name,
		Current:    change.Current.Name,
		Width:      change.Width,
	}))
}

func (e *Engine) emit(event activity.Event) {
	if !e.emitter.Enabled() {
		return
	}
	if err := e.emitter.Emit(context.Background(), event); err != nil {
		e.logger.LogResolve(ResolveLogEvent{
			Op:         "activity",
			Component:  event.ObjectID,
			Breakpoint: e.observer.Active().Name,
			Err:        err,
		})
	}
}
