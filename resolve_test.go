package tokens

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newButtonResolver(t *testing.T, opts ...ResolverOption) (*Store, *Resolver) {
	t.Helper()
	store := NewStore(standardBreakpoints(t))
	if err := store.RegisterBase("button", buttonBase()); err != nil {
		t.Fatalf("register base: %v", err)
	}
	return store, NewResolver(store, opts...)
}

func TestResolveEndToEndExample(t *testing.T) {
	store, resolver := newButtonResolver(t)
	if err := store.RegisterOverride("button", "md", backgroundFragment("#1E5FCC")); err != nil {
		t.Fatalf("register override: %v", err)
	}
	bps := store.Breakpoints()

	narrow, err := resolver.Resolve("button", bps.Active(500))
	if err != nil {
		t.Fatalf("resolve at 500: %v", err)
	}
	if got := narrow.Value(backgroundPath); got != "#2B7FFF" {
		t.Fatalf("expected base background at 500, got %s", got)
	}
	if diff := cmp.Diff(buttonBase(), narrow.Tokens()); diff != "" {
		t.Fatalf("expected base table at 500 (-want +got):\n%s", diff)
	}

	wide, err := resolver.Resolve("button", bps.Active(900))
	if err != nil {
		t.Fatalf("resolve at 900: %v", err)
	}
	if got := wide.Value(backgroundPath); got != "#1E5FCC" {
		t.Fatalf("expected md background at 900, got %s", got)
	}
	for _, leaf := range wide.Leaves() {
		if leaf.Path == backgroundPath {
			continue
		}
		if want, _ := buttonBase().Lookup(leaf.Path); want != leaf.Value {
			t.Fatalf("expected %s unchanged, got %v want %v", leaf.Path, leaf.Value, want)
		}
	}
	if len(wide.Applied) != 1 || wide.Applied[0] != "md" {
		t.Fatalf("expected md applied, got %v", wide.Applied)
	}
}

func TestResolveCloserBreakpointWins(t *testing.T) {
	store, resolver := newButtonResolver(t)
	fragments := map[string]Group{
		"sm": {"opacity": Number(0.8), "size": Group{"sm": Group{"primary": Group{"hover": Group{"transition": Duration("100ms")}}}}},
		"md": {"opacity": Number(0.9)},
		"lg": {"opacity": Number(0.95)},
	}
	for bp, fragment := range fragments {
		if err := store.RegisterOverride("button", bp, fragment); err != nil {
			t.Fatalf("register %s: %v", bp, err)
		}
	}

	cases := []struct {
		width      int
		opacity    string
		transition string
		applied    []string
	}{
		{100, "1", "150ms", []string{}},
		{500, "0.8", "100ms", []string{"sm"}},
		{800, "0.9", "100ms", []string{"sm", "md"}},
		{1200, "0.95", "100ms", []string{"sm", "md", "lg"}},
	}
	for _, tc := range cases {
		resolved, err := resolver.Resolve("button", store.Breakpoints().Active(tc.width))
		if err != nil {
			t.Fatalf("resolve at %d: %v", tc.width, err)
		}
		if got := resolved.Value("opacity"); got != tc.opacity {
			t.Fatalf("width %d expected opacity %s, got %s", tc.width, tc.opacity, got)
		}
		if got := resolved.Value("size.sm.primary.hover.transition"); got != tc.transition {
			t.Fatalf("width %d expected transition %s, got %s", tc.width, tc.transition, got)
		}
		if !reflect.DeepEqual(resolved.Applied, tc.applied) {
			t.Fatalf("width %d expected applied %v, got %v", tc.width, tc.applied, resolved.Applied)
		}
	}
}

func TestResolveKeepsFullShape(t *testing.T) {
	store, resolver := newButtonResolver(t)
	if err := store.RegisterOverride("button", "sm", Group{}); err != nil {
		t.Fatalf("register empty fragment: %v", err)
	}
	if err := store.RegisterOverride("button", "lg", backgroundFragment("#000000")); err != nil {
		t.Fatalf("register override: %v", err)
	}
	for _, bp := range store.Breakpoints().Epochs() {
		resolved, err := resolver.Resolve("button", bp)
		if err != nil {
			t.Fatalf("resolve at %s: %v", bp.Name, err)
		}
		if err := SchemaOf(buttonBase()).Check(resolved.Tokens()); err != nil {
			t.Fatalf("expected full shape at %s, got %v", bp.Name, err)
		}
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	store, resolver := newButtonResolver(t)
	if err := store.RegisterOverride("button", "md", backgroundFragment("#1E5FCC")); err != nil {
		t.Fatalf("register override: %v", err)
	}
	md, _ := store.Breakpoints().Lookup("md")
	first, err := resolver.Resolve("button", md)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := resolver.Resolve("button", md)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff(first.Tokens(), second.Tokens()); diff != "" {
		t.Fatalf("expected identical tables (-first +second):\n%s", diff)
	}
	if first == second || first.Epoch == second.Epoch {
		t.Fatalf("expected uncached resolver to build a new table each time")
	}

	tokens := first.Tokens()
	tokens["opacity"] = Number(0)
	if first.Value("opacity") != "1" {
		t.Fatalf("expected Tokens to return a private copy")
	}
}

func TestResolveUnknownComponent(t *testing.T) {
	_, resolver := newButtonResolver(t)
	_, err := resolver.Resolve("slider", Base)
	if !errors.Is(err, ErrUnknownComponent) || !errors.Is(err, ErrConfig) {
		t.Fatalf("expected unknown component, got %v", err)
	}
}

func TestResolveDetectsIncompleteTable(t *testing.T) {
	store, resolver := newButtonResolver(t)
	if err := store.RegisterSchema("button", SchemaOf(buttonBase())); err != nil {
		t.Fatalf("register schema: %v", err)
	}
	// Simulate a corrupted base that bypassed registration.
	store.mu.Lock()
	delete(store.bases["button"], "opacity")
	store.mu.Unlock()

	_, err := resolver.Resolve("button", Base)
	if !IsInvariantViolation(err) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Kind != KindIncomplete || cfgErr.Path != "opacity" {
		t.Fatalf("expected incomplete opacity, got %+v", cfgErr)
	}
}

func TestResolverLogsEvents(t *testing.T) {
	var events []ResolveLogEvent
	_, resolver := newButtonResolver(t, ResolverWithLogger(ResolveLoggerFunc(func(event ResolveLogEvent) {
		events = append(events, event)
	})))
	if _, err := resolver.Resolve("button", Base); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := resolver.Resolve("missing", Base); err == nil {
		t.Fatalf("expected error for missing component")
	}
	if len(events) != 2 || events[0].Op != "resolve" || events[0].Err != nil || events[1].Err == nil {
		t.Fatalf("unexpected log events: %+v", events)
	}
}
