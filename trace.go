package tokens

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-tokens/layering"
)

// Trace records how each layer contributed to one token path at a breakpoint.
type Trace struct {
	Component  string       `json:"component"`
	Breakpoint string       `json:"breakpoint"`
	Path       string       `json:"path"`
	Layers     []Provenance `json:"layers"`
	// Value is the effective leaf value, empty when the path is not a leaf.
	Value string `json:"value,omitempty"`
}

// Provenance details one layer's contribution. The base layer is named
// "base"; override layers carry their breakpoint name.
type Provenance struct {
	Layer    string `json:"layer"`
	MinWidth int    `json:"min_width"`
	Value    string `json:"value,omitempty"`
	Found    bool   `json:"found"`
	// Skipped is set when a guard excluded the layer.
	Skipped bool   `json:"skipped,omitempty"`
	When    string `json:"when,omitempty"`
}

// Winner returns the last layer that supplied the effective value.
func (t Trace) Winner() (Provenance, bool) {
	for i := len(t.Layers) - 1; i >= 0; i-- {
		if t.Layers[i].Found && !t.Layers[i].Skipped {
			return t.Layers[i], true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// Trace explains the value of path for component at bp: the base layer
// followed by every override whose breakpoint qualifies, weakest first.
func (e *Engine) Trace(component string, bp Breakpoint, path string) (Trace, error) {
	bp, err := e.registered(component, bp)
	if err != nil {
		return Trace{}, err
	}
	return e.resolver.Trace(component, bp, path)
}

// Trace is the uncached form of Engine.Trace.
func (r *Resolver) Trace(component string, active Breakpoint, path string) (Trace, error) {
	snap, ok := r.store.snapshot(component)
	if !ok {
		return Trace{}, configError(KindUnknownComponent, component, active.Name, path, fmt.Errorf("%w: %q", ErrUnknownComponent, component))
	}
	node, ok := snap.base.Lookup(path)
	if !ok || !node.Kind().IsLeaf() {
		return Trace{}, configError(KindShapeMismatch, component, active.Name, path, &layering.PathError{Path: path, Err: layering.ErrUnknownPath})
	}

	trace := Trace{
		Component:  component,
		Breakpoint: active.Name,
		Path:       path,
		Layers: []Provenance{{
			Layer: BaseBreakpointName,
			Value: layering.LeafString(node),
			Found: true,
		}},
		Value: layering.LeafString(node),
	}
	for _, override := range snap.overrides {
		if compareBreakpoints(override.Breakpoint, active) > 0 {
			continue
		}
		layer := Provenance{
			Layer:    override.Breakpoint.Name,
			MinWidth: override.Breakpoint.MinWidth,
			When:     override.When,
		}
		if leaf, found := override.Fragment.Lookup(path); found {
			layer.Found = true
			layer.Value = layering.LeafString(leaf)
		}
		allowed, err := override.guard.allows(r.ruleContext(component, active))
		if err != nil {
			return Trace{}, configError(KindGuard, component, override.Breakpoint.Name, path, err)
		}
		layer.Skipped = !allowed
		if layer.Found && allowed {
			trace.Value = layer.Value
		}
		trace.Layers = append(trace.Layers, layer)
	}
	return trace, nil
}
