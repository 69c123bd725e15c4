package tokens

import (
	"errors"
	"strings"
	"testing"
)

type buttonStyle struct {
	Background string `json:"background"`
	Padding    string `json:"padding"`
}

type buttonHover struct {
	Background string `json:"background"`
	Transition string `json:"transition"`
}

type buttonTokens struct {
	Opacity float64 `json:"opacity"`
	Size    struct {
		Sm struct {
			Primary struct {
				Default buttonStyle `json:"default"`
				Hover   buttonHover `json:"hover"`
			} `json:"primary"`
		} `json:"sm"`
	} `json:"size"`
}

func TestDecodeResolvedTokens(t *testing.T) {
	engine := newTestEngine(t)
	registerButton(t, engine)
	resolved, err := engine.ResolveWidth("button", 900)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	decoded, err := Decode[buttonTokens](resolved, DecodeStrict[buttonTokens]())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Size.Sm.Primary.Default.Background != "#1E5FCC" || decoded.Opacity != 1 {
		t.Fatalf("unexpected decoded tokens: %+v", decoded)
	}
	if decoded.Size.Sm.Primary.Hover.Transition != "150ms" {
		t.Fatalf("expected duration as string, got %q", decoded.Size.Sm.Primary.Hover.Transition)
	}
}

func TestDecodeStrictRejectsUndeclaredTokens(t *testing.T) {
	type opacityOnly struct {
		Opacity float64 `json:"opacity"`
	}
	engine := newTestEngine(t)
	registerButton(t, engine)
	resolved := engine.MustResolve("button")

	if _, err := Decode[opacityOnly](resolved); err != nil {
		t.Fatalf("expected lenient decode, got %v", err)
	}
	if _, err := Decode[opacityOnly](resolved, DecodeStrict[opacityOnly]()); err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("expected strict decode to fail, got %v", err)
	}
}

func TestDecodeValidate(t *testing.T) {
	engine := newTestEngine(t)
	registerButton(t, engine)
	resolved := engine.MustResolve("button")
	boom := errors.New("opacity must be below 1")

	_, err := Decode[buttonTokens](resolved, DecodeValidate(func(r *Resolved, v *buttonTokens) error {
		if r.Component != "button" {
			t.Fatalf("expected resolved table in hook, got %q", r.Component)
		}
		if v.Opacity >= 1 {
			return boom
		}
		return nil
	}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := Decode[buttonTokens](nil); err == nil {
		t.Fatalf("expected nil resolution error")
	}
}
