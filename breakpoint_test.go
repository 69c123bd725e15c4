package tokens

import (
	"errors"
	"testing"
)

func TestNewBreakpointsSortsAscending(t *testing.T) {
	bps := standardBreakpoints(t)
	all := bps.All()
	if len(all) != 3 || all[0].Name != "sm" || all[1].Name != "md" || all[2].Name != "lg" {
		t.Fatalf("expected sm, md, lg order, got %+v", all)
	}
	all[0].Name = "mutated"
	if bps.All()[0].Name != "sm" {
		t.Fatalf("expected All to return a copy")
	}
}

func TestActiveBreakpoint(t *testing.T) {
	bps := standardBreakpoints(t)
	cases := map[int]string{
		0:    BaseBreakpointName,
		479:  BaseBreakpointName,
		480:  "sm",
		500:  "sm",
		767:  "sm",
		768:  "md",
		900:  "md",
		1024: "lg",
		4000: "lg",
	}
	for width, want := range cases {
		if got := bps.Active(width); got.Name != want {
			t.Fatalf("Active(%d) expected %s, got %s", width, want, got.Name)
		}
	}
	if got := bps.Active(10); got != Base {
		t.Fatalf("expected base sentinel with minWidth 0, got %+v", got)
	}
}

func TestActiveOnEmptyRegistry(t *testing.T) {
	var nilRegistry *Breakpoints
	if got := nilRegistry.Active(900); got != Base {
		t.Fatalf("expected base for nil registry, got %+v", got)
	}
	empty := MustBreakpoints()
	if got := empty.Active(900); got != Base {
		t.Fatalf("expected base for empty registry, got %+v", got)
	}
}

func TestNewBreakpointsRejectsInvalidDefinitions(t *testing.T) {
	cases := []struct {
		name string
		defs []Breakpoint
		want error
		kind ErrorKind
	}{
		{"duplicate name", []Breakpoint{{Name: "md", MinWidth: 768}, {Name: "md", MinWidth: 900}}, ErrDuplicateBreakpoint, KindDuplicateBreakpoint},
		{"duplicate width", []Breakpoint{{Name: "md", MinWidth: 768}, {Name: "tablet", MinWidth: 768}}, ErrDuplicateBreakpoint, KindDuplicateBreakpoint},
		{"empty name", []Breakpoint{{Name: "  ", MinWidth: 768}}, ErrInvalidBreakpoint, KindInvalidBreakpoint},
		{"negative width", []Breakpoint{{Name: "xs", MinWidth: -1}}, ErrInvalidBreakpoint, KindInvalidBreakpoint},
		{"reserved base", []Breakpoint{{Name: BaseBreakpointName, MinWidth: 320}}, ErrInvalidBreakpoint, KindInvalidBreakpoint},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBreakpoints(tc.defs...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ConfigError, got %T", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %+v", tc.kind, cfgErr)
			}
		})
	}
}

func TestMustBreakpointsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate definitions")
		}
	}()
	MustBreakpoints(Breakpoint{Name: "a", MinWidth: 1}, Breakpoint{Name: "a", MinWidth: 2})
}

func TestLookupKnowsBase(t *testing.T) {
	bps := standardBreakpoints(t)
	if bp, ok := bps.Lookup("md"); !ok || bp.MinWidth != 768 {
		t.Fatalf("expected md lookup, got %+v ok=%t", bp, ok)
	}
	if bp, ok := bps.Lookup(BaseBreakpointName); !ok || !bp.IsBase() {
		t.Fatalf("expected implicit base lookup, got %+v ok=%t", bp, ok)
	}
	if _, ok := bps.Lookup("xl"); ok {
		t.Fatalf("expected unknown breakpoint lookup to fail")
	}
}

func TestZeroWidthBreakpointReplacesBase(t *testing.T) {
	bps := MustBreakpoints(Breakpoint{Name: "xs", MinWidth: 0}, Breakpoint{Name: "md", MinWidth: 768})
	if got := bps.Active(100); got.Name != "xs" {
		t.Fatalf("expected registered zero-width breakpoint to be active, got %s", got.Name)
	}
	epochs := bps.Epochs()
	if len(epochs) != 2 || epochs[0].Name != "xs" {
		t.Fatalf("expected no implicit base in epochs, got %+v", epochs)
	}
	if compareBreakpoints(Base, epochs[0]) >= 0 {
		t.Fatalf("expected base to order before a zero-width breakpoint")
	}
	if got := standardBreakpoints(t).Epochs(); len(got) != 4 || !got[0].IsBase() {
		t.Fatalf("expected implicit base first in epochs, got %+v", got)
	}
}
