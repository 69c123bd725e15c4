package layering

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PathSeparator joins the keys of a nested token path (e.g. "size.sm.primary").
const PathSeparator = "."

// Kind tags every node in a token tree.
type Kind uint8

const (
	// KindUnknown guards against misconfiguration so call sites can detect
	// missing metadata.
	KindUnknown Kind = iota
	// KindGroup is a nesting level; it never carries a value of its own.
	KindGroup
	// KindColor is a color string such as "#2B7FFF" or "rgb(0 0 0 / 50%)".
	KindColor
	// KindDimension is a length such as "12px" or "1.5rem".
	KindDimension
	// KindDuration is a time value such as "150ms".
	KindDuration
	// KindNumber is a unitless number (opacity, line height, weight).
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindColor:
		return "color"
	case KindDimension:
		return "dimension"
	case KindDuration:
		return "duration"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// IsLeaf reports whether k describes a terminal style primitive.
func (k Kind) IsLeaf() bool {
	return k >= KindColor && k <= KindNumber
}

// ParseKind converts a string representation into the corresponding Kind.
// Returns KindUnknown for unrecognised values.
func ParseKind(value string) Kind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "group":
		return KindGroup
	case "color", "colour":
		return KindColor
	case "dimension", "size":
		return KindDimension
	case "duration":
		return KindDuration
	case "number":
		return KindNumber
	default:
		return KindUnknown
	}
}

// Node is one element of a token tree. The set of implementations is closed:
// Group for nesting and Color, Dimension, Duration, Number for leaves.
type Node interface {
	Kind() Kind
	sealed()
}

// Group is a nesting level keyed by token segment.
type Group map[string]Node

// Color is a color leaf.
type Color string

// Dimension is a length leaf.
type Dimension string

// Duration is a time leaf.
type Duration string

// Number is a unitless numeric leaf.
type Number float64

func (Group) Kind() Kind     { return KindGroup }
func (Color) Kind() Kind     { return KindColor }
func (Dimension) Kind() Kind { return KindDimension }
func (Duration) Kind() Kind  { return KindDuration }
func (Number) Kind() Kind    { return KindNumber }

func (Group) sealed()     {}
func (Color) sealed()     {}
func (Dimension) sealed() {}
func (Duration) sealed()  {}
func (Number) sealed()    {}

func (c Color) String() string     { return string(c) }
func (d Dimension) String() string { return string(d) }
func (d Duration) String() string  { return string(d) }
func (n Number) String() string    { return strconv.FormatFloat(float64(n), 'f', -1, 64) }

// Leaf pairs a dotted path with the leaf stored there.
type Leaf struct {
	Path  string
	Value Node
}

// LeafString renders a leaf node as the string a style consumer would use.
// Groups and nil nodes render as "".
func LeafString(node Node) string {
	switch typed := node.(type) {
	case Color:
		return typed.String()
	case Dimension:
		return typed.String()
	case Duration:
		return typed.String()
	case Number:
		return typed.String()
	default:
		return ""
	}
}

// Lookup walks path through the tree and returns the node stored there.
func (g Group) Lookup(path string) (Node, bool) {
	if path == "" {
		return g, true
	}
	var current Node = g
	for _, segment := range SplitPath(path) {
		group, ok := current.(Group)
		if !ok {
			return nil, false
		}
		next, ok := group[segment]
		if !ok || next == nil {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Leaves returns every leaf in the tree sorted by path.
func (g Group) Leaves() []Leaf {
	var out []Leaf
	walkLeaves(g, "", func(path string, node Node) {
		out = append(out, Leaf{Path: path, Value: node})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len reports the number of leaves in the tree.
func (g Group) Len() int {
	count := 0
	walkLeaves(g, "", func(string, Node) { count++ })
	return count
}

// Plain converts the tree into nested map[string]any values holding strings
// and float64s, suitable for JSON encoding and expression environments.
func (g Group) Plain() map[string]any {
	if g == nil {
		return nil
	}
	out := make(map[string]any, len(g))
	for key, node := range g {
		switch typed := node.(type) {
		case Group:
			out[key] = typed.Plain()
		case Number:
			out[key] = float64(typed)
		case nil:
			continue
		default:
			out[key] = LeafString(typed)
		}
	}
	return out
}

func walkLeaves(g Group, prefix string, visit func(path string, node Node)) {
	for key, node := range g {
		path := JoinPath(prefix, key)
		switch typed := node.(type) {
		case Group:
			walkLeaves(typed, path, visit)
		case nil:
			continue
		default:
			visit(path, typed)
		}
	}
}

// JoinPath appends segment to prefix using PathSeparator.
func JoinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + PathSeparator + segment
}

// SplitPath breaks a dotted path into its segments.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed := ParseKind(string(text))
	if parsed == KindUnknown {
		return fmt.Errorf("layering: unknown kind %q", string(text))
	}
	*k = parsed
	return nil
}
