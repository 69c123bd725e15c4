// Package tokens resolves responsive design tokens.
//
// A component registers a complete base table of style leaves (colors,
// dimensions, durations, numbers) and optional partial override fragments
// bound to viewport breakpoints. Resolving a component at a breakpoint folds
// every qualifying fragment onto a copy of the base in ascending MinWidth
// order, leaf by leaf, so the breakpoint closest to the viewport wins and the
// result always has the base's full shape.
//
// Resolutions are cached per (component, breakpoint). The viewport Observer
// debounces width samples and, when the active breakpoint changes,
// invalidates the cache before notifying subscribers:
//
//	bps := tokens.MustBreakpoints(tokens.Breakpoint{Name: "md", MinWidth: 768})
//	engine := tokens.MustNew(bps)
//	_ = engine.RegisterBase("button", base)
//	_ = engine.RegisterOverride("button", "md", fragment)
//	stop := engine.Use("button", func(r *tokens.Resolved, err error) { ... })
//	defer stop()
//	engine.Sample(900)
//
// Overrides may carry a guard expression (WithWhen) evaluated against static
// engine facts by expr, CEL or, with the js_eval build tag, goja.
package tokens
