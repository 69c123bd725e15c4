package tokens

import (
	"fmt"
	"testing"
)

func benchmarkEngine(b *testing.B) *Engine {
	engine := newTestEngine(b)
	if err := engine.RegisterBase("button", buttonBase()); err != nil {
		b.Fatalf("register base: %v", err)
	}
	for i, bp := range []string{"sm", "md", "lg"} {
		if err := engine.RegisterOverride("button", bp, backgroundFragment(fmt.Sprintf("#00000%d", i))); err != nil {
			b.Fatalf("register %s: %v", bp, err)
		}
	}
	return engine
}

func BenchmarkResolveUncached(b *testing.B) {
	engine := benchmarkEngine(b)
	lg, _ := engine.Breakpoints().Lookup("lg")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.resolver.Resolve("button", lg); err != nil {
			b.Fatalf("resolve: %v", err)
		}
	}
}

func BenchmarkResolveCached(b *testing.B) {
	engine := benchmarkEngine(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.ResolveWidth("button", 1200); err != nil {
			b.Fatalf("resolve: %v", err)
		}
	}
}

func BenchmarkTrace(b *testing.B) {
	engine := benchmarkEngine(b)
	lg, _ := engine.Breakpoints().Lookup("lg")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Trace("button", lg, backgroundPath); err != nil {
			b.Fatalf("trace: %v", err)
		}
	}
}
