package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the resolved table being decoded.
type Context struct {
	Component  string
	Breakpoint string
}

func (c Context) String() string {
	if c.Breakpoint == "" {
		return fmt.Sprintf("%q", c.Component)
	}
	return fmt.Sprintf("%q@%s", c.Component, c.Breakpoint)
}

// PreHook may rewrite the plain token map before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook may adjust or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default JSON round trip.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts plain token maps into caller structs.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
	custom       CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields rejects tokens the target struct does not declare.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithUseNumber decodes number tokens into json.Number when the target is untyped.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

// WithCustomDecoder replaces the default JSON decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts tokens into T. The input map is never mutated; hooks see a
// private copy.
func (d *Decoder[T]) Decode(ctx Context, tokens map[string]any) (T, error) {
	var zero T
	if tokens == nil {
		return zero, fmt.Errorf("hydrate: tokens are nil for %s", ctx)
	}

	buffer, err := json.Marshal(tokens)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal tokens for %s: %w", ctx, err)
	}

	current := tokens
	if len(d.preHooks) > 0 || d.custom != nil {
		current = map[string]any{}
		if err := json.Unmarshal(buffer, &current); err != nil {
			return zero, fmt.Errorf("hydrate: copy tokens for %s: %w", ctx, err)
		}
	}
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx, err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	switch {
	case d.custom != nil:
		result, err = d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for %s failed: %w", ctx, err)
		}
	default:
		if len(d.preHooks) > 0 {
			if buffer, err = json.Marshal(current); err != nil {
				return zero, fmt.Errorf("hydrate: marshal tokens for %s: %w", ctx, err)
			}
		}
		decoder := json.NewDecoder(bytes.NewReader(buffer))
		for _, configure := range d.configureDec {
			configure(decoder)
		}
		if err := decoder.Decode(&result); err != nil {
			return zero, fmt.Errorf("hydrate: decode %s: %w", ctx, err)
		}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx, err)
		}
	}
	return result, nil
}
