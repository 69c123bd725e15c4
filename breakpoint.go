package tokens

import (
	"fmt"
	"sort"
	"strings"
)

// BaseBreakpointName names the implicit breakpoint that is active below the
// smallest registered threshold.
const BaseBreakpointName = "base"

// Base is the sentinel breakpoint returned when no registered threshold
// qualifies for a width.
var Base = Breakpoint{Name: BaseBreakpointName, MinWidth: 0}

// Breakpoint is a named viewport-width threshold in pixels.
type Breakpoint struct {
	Name     string `json:"name" yaml:"name"`
	MinWidth int    `json:"minWidth" yaml:"minWidth"`
}

// IsBase reports whether b is the implicit base breakpoint.
func (b Breakpoint) IsBase() bool {
	return b.Name == BaseBreakpointName
}

func (b Breakpoint) String() string {
	return fmt.Sprintf("%s(%dpx)", b.Name, b.MinWidth)
}

// Breakpoints is an immutable registry of thresholds ordered by MinWidth.
// A nil *Breakpoints behaves like an empty registry.
type Breakpoints struct {
	ordered []Breakpoint
	byName  map[string]Breakpoint
}

// NewBreakpoints validates and sorts defs. Names and widths must be unique,
// names non-empty, widths non-negative. The name "base" is reserved for a
// zero-width threshold.
func NewBreakpoints(defs ...Breakpoint) (*Breakpoints, error) {
	ordered := make([]Breakpoint, 0, len(defs))
	byName := make(map[string]Breakpoint, len(defs))
	byWidth := make(map[int]string, len(defs))

	for _, def := range defs {
		def.Name = strings.TrimSpace(def.Name)
		if def.Name == "" {
			return nil, configError(KindInvalidBreakpoint, "", "", "", fmt.Errorf("%w: name must be provided", ErrInvalidBreakpoint))
		}
		if def.MinWidth < 0 {
			return nil, configError(KindInvalidBreakpoint, "", def.Name, "", fmt.Errorf("%w: minWidth %d is negative", ErrInvalidBreakpoint, def.MinWidth))
		}
		if def.Name == BaseBreakpointName && def.MinWidth != 0 {
			return nil, configError(KindInvalidBreakpoint, "", def.Name, "", fmt.Errorf("%w: %q is reserved for minWidth 0", ErrInvalidBreakpoint, BaseBreakpointName))
		}
		if _, exists := byName[def.Name]; exists {
			return nil, configError(KindDuplicateBreakpoint, "", def.Name, "", fmt.Errorf("%w: name %q", ErrDuplicateBreakpoint, def.Name))
		}
		if other, exists := byWidth[def.MinWidth]; exists {
			return nil, configError(KindDuplicateBreakpoint, "", def.Name, "", fmt.Errorf("%w: minWidth %d shared with %q", ErrDuplicateBreakpoint, def.MinWidth, other))
		}
		byName[def.Name] = def
		byWidth[def.MinWidth] = def.Name
		ordered = append(ordered, def)
	}

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].MinWidth < ordered[j].MinWidth
	})

	return &Breakpoints{ordered: ordered, byName: byName}, nil
}

// MustBreakpoints is like NewBreakpoints but panics on error. It is meant for
// package-level static configuration.
func MustBreakpoints(defs ...Breakpoint) *Breakpoints {
	bps, err := NewBreakpoints(defs...)
	if err != nil {
		panic(err)
	}
	return bps
}

// Active returns the breakpoint with the greatest MinWidth not exceeding
// width, or Base when none qualifies.
func (b *Breakpoints) Active(width int) Breakpoint {
	if b == nil || len(b.ordered) == 0 {
		return Base
	}
	idx := sort.Search(len(b.ordered), func(i int) bool {
		return b.ordered[i].MinWidth > width
	})
	if idx == 0 {
		return Base
	}
	return b.ordered[idx-1]
}

// Lookup finds a breakpoint by name. The implicit base breakpoint is always
// known.
func (b *Breakpoints) Lookup(name string) (Breakpoint, bool) {
	if b != nil {
		if bp, ok := b.byName[name]; ok {
			return bp, true
		}
	}
	if name == BaseBreakpointName {
		return Base, true
	}
	return Breakpoint{}, false
}

// All returns the registered breakpoints ordered ascending by MinWidth. The
// implicit base is not included unless it was registered explicitly.
func (b *Breakpoints) All() []Breakpoint {
	if b == nil || len(b.ordered) == 0 {
		return nil
	}
	out := make([]Breakpoint, len(b.ordered))
	copy(out, b.ordered)
	return out
}

// Len returns the number of registered breakpoints.
func (b *Breakpoints) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ordered)
}

// Epochs returns every breakpoint that can be active, starting with the
// implicit base when no zero-width threshold was registered.
func (b *Breakpoints) Epochs() []Breakpoint {
	all := b.All()
	if len(all) > 0 && all[0].MinWidth == 0 {
		return all
	}
	return append([]Breakpoint{Base}, all...)
}

// compareBreakpoints orders by MinWidth, placing the implicit base first on
// ties so a registered zero-width threshold overrides it.
func compareBreakpoints(a, b Breakpoint) int {
	if a.MinWidth != b.MinWidth {
		if a.MinWidth < b.MinWidth {
			return -1
		}
		return 1
	}
	switch {
	case a.IsBase() && !b.IsBase():
		return -1
	case !a.IsBase() && b.IsBase():
		return 1
	default:
		return strings.Compare(a.Name, b.Name)
	}
}
