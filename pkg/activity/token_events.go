package activity

import (
	"strings"
	"time"
)

const (
	VerbBreakpointChanged  = "tokens.breakpoint.changed"
	VerbBaseRegistered     = "tokens.base.registered"
	VerbOverrideRegistered = "tokens.override.registered"
	VerbComponentRemoved   = "tokens.component.removed"

	ObjectViewport  = "viewport"
	ObjectComponent = "component"
	ObjectOverride  = "override"
)

// BreakpointChangeInput describes a settled viewport crossing.
type BreakpointChangeInput struct {
	ViewportID string
	Previous   string
	Current    string
	Width      int
	OccurredAt time.Time
}

// BuildBreakpointChangedEvent constructs the event emitted after a viewport
// crossing settles.
func BuildBreakpointChangedEvent(input BreakpointChangeInput) Event {
	objectID := strings.TrimSpace(input.ViewportID)
	if objectID == "" {
		objectID = ObjectViewport
	}
	return Event{
		Verb:       VerbBreakpointChanged,
		ObjectType: ObjectViewport,
		ObjectID:   objectID,
		Metadata: map[string]any{
			"previous": input.Previous,
			"current":  input.Current,
			"width":    input.Width,
		},
		OccurredAt: input.OccurredAt,
	}
}

// RegistrationInput describes a token table registration.
type RegistrationInput struct {
	Component  string
	Breakpoint string
	Leaves     int
	Guard      string
	OccurredAt time.Time
}

// BuildBaseRegisteredEvent constructs the event emitted when a component's
// base table is registered.
func BuildBaseRegisteredEvent(input RegistrationInput) Event {
	return Event{
		Verb:       VerbBaseRegistered,
		ObjectType: ObjectComponent,
		ObjectID:   strings.TrimSpace(input.Component),
		Metadata:   map[string]any{"leaves": input.Leaves},
		OccurredAt: input.OccurredAt,
	}
}

// BuildOverrideRegisteredEvent constructs the event emitted when an override
// fragment is registered. The object id is "component@breakpoint".
func BuildOverrideRegisteredEvent(input RegistrationInput) Event {
	component := strings.TrimSpace(input.Component)
	breakpoint := strings.TrimSpace(input.Breakpoint)
	metadata := map[string]any{
		"component":  component,
		"breakpoint": breakpoint,
		"leaves":     input.Leaves,
	}
	if guard := strings.TrimSpace(input.Guard); guard != "" {
		metadata["when"] = guard
	}
	objectID := ""
	if component != "" && breakpoint != "" {
		objectID = component + "@" + breakpoint
	}
	return Event{
		Verb:       VerbOverrideRegistered,
		ObjectType: ObjectOverride,
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// BuildComponentRemovedEvent constructs the event emitted when a component's
// registrations are dropped.
func BuildComponentRemovedEvent(component string, occurredAt time.Time) Event {
	return Event{
		Verb:       VerbComponentRemoved,
		ObjectType: ObjectComponent,
		ObjectID:   strings.TrimSpace(component),
		OccurredAt: occurredAt,
	}
}
