package tokens

import (
	"fmt"

	"github.com/goliatone/go-tokens/internal/hydrate"
)

// DecodeOption configures Decode.
type DecodeOption[T any] func(*decodeConfig[T])

type decodeConfig[T any] struct {
	strict bool
	post   []func(*Resolved, *T) error
}

// DecodeStrict rejects tokens the target struct does not declare.
func DecodeStrict[T any]() DecodeOption[T] {
	return func(cfg *decodeConfig[T]) {
		cfg.strict = true
	}
}

// DecodeValidate runs fn on the decoded value.
func DecodeValidate[T any](fn func(*Resolved, *T) error) DecodeOption[T] {
	return func(cfg *decodeConfig[T]) {
		if fn != nil {
			cfg.post = append(cfg.post, fn)
		}
	}
}

// Decode hydrates a resolved table into T using the table's JSON shape:
// number leaves become float64, every other leaf a string.
func Decode[T any](resolved *Resolved, opts ...DecodeOption[T]) (T, error) {
	var zero T
	if resolved == nil {
		return zero, fmt.Errorf("tokens: decode nil resolution")
	}
	cfg := decodeConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	decoderOpts := []hydrate.DecoderOption[T]{}
	if cfg.strict {
		decoderOpts = append(decoderOpts, hydrate.WithDisallowUnknownFields[T]())
	}
	for _, fn := range cfg.post {
		fn := fn
		decoderOpts = append(decoderOpts, hydrate.WithPostHook[T](func(_ hydrate.Context, value *T) error {
			return fn(resolved, value)
		}))
	}

	ctx := hydrate.Context{Component: resolved.Component, Breakpoint: resolved.Breakpoint.Name}
	return hydrate.NewDecoder(decoderOpts...).Decode(ctx, resolved.Plain())
}
