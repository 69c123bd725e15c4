package tokens

import "testing"

func standardBreakpoints(t testing.TB) *Breakpoints {
	t.Helper()
	bps, err := NewBreakpoints(
		Breakpoint{Name: "lg", MinWidth: 1024},
		Breakpoint{Name: "sm", MinWidth: 480},
		Breakpoint{Name: "md", MinWidth: 768},
	)
	if err != nil {
		t.Fatalf("breakpoints: %v", err)
	}
	return bps
}

func buttonBase() Group {
	return Group{
		"size": Group{
			"sm": Group{
				"primary": Group{
					"default": Group{
						"background": Color("#2B7FFF"),
						"padding":    Dimension("8px"),
					},
					"hover": Group{
						"background": Color("#4A93FF"),
						"transition": Duration("150ms"),
					},
				},
			},
		},
		"opacity": Number(1),
	}
}

func backgroundFragment(color string) Group {
	return Group{"size": Group{"sm": Group{"primary": Group{"default": Group{"background": Color(color)}}}}}
}

const backgroundPath = "size.sm.primary.default.background"

func newTestEngine(t testing.TB, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithViewportDebounce(0)}, opts...)
	engine, err := New(standardBreakpoints(t), opts...)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}
