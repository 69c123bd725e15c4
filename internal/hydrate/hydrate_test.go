package hydrate

import (
	"errors"
	"strings"
	"testing"
)

type buttonState struct {
	Background string `json:"background"`
	Padding    string `json:"padding"`
}

type buttonTokens struct {
	Opacity float64 `json:"opacity"`
	Size    struct {
		Sm struct {
			Primary struct {
				Default buttonState `json:"default"`
			} `json:"primary"`
		} `json:"sm"`
	} `json:"size"`
}

func plainButton() map[string]any {
	return map[string]any{
		"opacity": 0.9,
		"size": map[string]any{
			"sm": map[string]any{
				"primary": map[string]any{
					"default": map[string]any{
						"background": "#2B7FFF",
						"padding":    "8px",
					},
				},
			},
		},
	}
}

func TestDecodeNestedTokens(t *testing.T) {
	decoder := NewDecoder[buttonTokens]()
	got, err := decoder.Decode(Context{Component: "button", Breakpoint: "md"}, plainButton())
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got.Size.Sm.Primary.Default.Background != "#2B7FFF" || got.Opacity != 0.9 {
		t.Fatalf("unexpected decoded tokens: %+v", got)
	}
}

func TestDecodeNilTokens(t *testing.T) {
	_, err := NewDecoder[buttonTokens]().Decode(Context{Component: "button"}, nil)
	if err == nil || !strings.Contains(err.Error(), `"button"`) {
		t.Fatalf("expected nil tokens error naming component, got %v", err)
	}
}

func TestDecodeDisallowUnknownFields(t *testing.T) {
	type opacityOnly struct {
		Opacity float64 `json:"opacity"`
	}
	_, err := NewDecoder(WithDisallowUnknownFields[opacityOnly]()).Decode(Context{Component: "button"}, plainButton())
	if err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestPreHookSeesPrivateCopy(t *testing.T) {
	input := plainButton()
	hook := func(_ Context, tokens map[string]any) (map[string]any, error) {
		tokens["opacity"] = 0.1
		return tokens, nil
	}
	got, err := NewDecoder(WithPreHook[buttonTokens](hook)).Decode(Context{Component: "button"}, input)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got.Opacity != 0.1 {
		t.Fatalf("expected pre-hook value, got %v", got.Opacity)
	}
	if input["opacity"] != 0.9 {
		t.Fatalf("expected input untouched, got %v", input["opacity"])
	}
}

func TestPostHookErrorsAreWrapped(t *testing.T) {
	boom := errors.New("too transparent")
	hook := func(ctx Context, tokens *buttonTokens) error {
		if tokens.Opacity < 1 {
			return boom
		}
		return nil
	}
	_, err := NewDecoder(WithPostHook[buttonTokens](hook)).Decode(Context{Component: "button", Breakpoint: "sm"}, plainButton())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped post-hook error, got %v", err)
	}
	if !strings.Contains(err.Error(), `"button"@sm`) {
		t.Fatalf("expected context in message, got %v", err)
	}
}

func TestCustomDecoder(t *testing.T) {
	custom := func(_ Context, tokens map[string]any) (string, error) {
		return tokens["size"].(map[string]any)["sm"].(map[string]any)["primary"].(map[string]any)["default"].(map[string]any)["background"].(string), nil
	}
	got, err := NewDecoder(WithCustomDecoder[string](custom)).Decode(Context{Component: "button"}, plainButton())
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got != "#2B7FFF" {
		t.Fatalf("expected custom decoded background, got %q", got)
	}
}
