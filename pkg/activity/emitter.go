package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "tokens"

// Config controls emission defaults.
type Config struct {
	Enabled bool
	Channel string
	// ActorID and TenantID are stamped on events that do not carry their own.
	ActorID  string
	TenantID string
}

// Emitter fans out events to hooks while applying defaults.
type Emitter struct {
	hooks  Hooks
	config Config
}

// NewEmitter constructs an emitter from hooks and configuration. An emitter
// without hooks is disabled regardless of cfg.Enabled.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	cfg.Channel = strings.TrimSpace(cfg.Channel)
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	filtered := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			filtered = append(filtered, hook)
		}
	}
	cfg.Enabled = cfg.Enabled && len(filtered) > 0
	return &Emitter{hooks: filtered, config: cfg}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.config.Enabled
}

// Emit forwards event to all hooks after applying defaults.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.config.Channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.config.ActorID
	}
	if strings.TrimSpace(event.TenantID) == "" {
		event.TenantID = e.config.TenantID
	}
	return e.hooks.Notify(ctx, event)
}
