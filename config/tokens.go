package config

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-tokens/layering"
)

var (
	hexColorPattern  = regexp.MustCompile(`^#([0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	dimensionPattern = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)(px|rem|em|%|vw|vh)$`)
	durationPattern  = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)(ms|s)$`)
)

var colorFunctions = []string{"rgb(", "rgba(", "hsl(", "hsla(", "oklch(", "color("}

const (
	typeKey  = "$type"
	valueKey = "$value"
)

// ToGroup converts decoded YAML into a token tree. Leaf kinds are inferred
// from the value ("#fff" is a color, "8px" a dimension, "150ms" a duration,
// bare numbers are numbers). A map carrying $type and $value states the kind
// explicitly.
func ToGroup(raw map[string]any) (layering.Group, error) {
	return toGroup(raw, "")
}

func toGroup(raw map[string]any, prefix string) (layering.Group, error) {
	out := make(layering.Group, len(raw))
	keys := lo.Keys(raw)
	sort.Strings(keys)

	for _, key := range keys {
		path := layering.JoinPath(prefix, key)
		if strings.Contains(key, layering.PathSeparator) {
			return nil, fmt.Errorf("%s: key must not contain %q", path, layering.PathSeparator)
		}
		node, err := toNode(raw[key], path)
		if err != nil {
			return nil, err
		}
		out[key] = node
	}
	return out, nil
}

func toNode(value any, path string) (layering.Node, error) {
	switch v := value.(type) {
	case map[string]any:
		if _, ok := v[typeKey]; ok {
			return explicitLeaf(v, path)
		}
		return toGroup(v, path)
	case string:
		return inferLeaf(v, path)
	case int:
		return layering.Number(v), nil
	case int64:
		return layering.Number(v), nil
	case uint64:
		return layering.Number(v), nil
	case float64:
		return layering.Number(v), nil
	case nil:
		return nil, fmt.Errorf("%s: value is empty", path)
	default:
		return nil, fmt.Errorf("%s: unsupported value %T", path, value)
	}
}

func explicitLeaf(raw map[string]any, path string) (layering.Node, error) {
	kindName, _ := raw[typeKey].(string)
	kind := parseLeafKind(kindName)
	if !kind.IsLeaf() {
		return nil, fmt.Errorf("%s: unknown $type %q", path, kindName)
	}
	value, ok := raw[valueKey]
	if !ok {
		return nil, fmt.Errorf("%s: $value is required", path)
	}
	text := strings.TrimSpace(fmt.Sprint(value))
	switch kind {
	case layering.KindColor:
		return layering.Color(text), nil
	case layering.KindDimension:
		return layering.Dimension(text), nil
	case layering.KindDuration:
		return layering.Duration(text), nil
	default:
		number, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: $value %q is not a number", path, text)
		}
		return layering.Number(number), nil
	}
}

func inferLeaf(raw, path string) (layering.Node, error) {
	value := strings.TrimSpace(raw)
	lower := strings.ToLower(value)
	switch {
	case hexColorPattern.MatchString(value), lower == "transparent", lower == "currentcolor":
		return layering.Color(value), nil
	case hasColorFunction(lower):
		return layering.Color(value), nil
	case dimensionPattern.MatchString(lower):
		return layering.Dimension(value), nil
	case durationPattern.MatchString(lower):
		return layering.Duration(value), nil
	}
	if number, err := strconv.ParseFloat(value, 64); err == nil {
		return layering.Number(number), nil
	}
	return nil, fmt.Errorf("%s: cannot infer token kind for %q, use {$type, $value}", path, raw)
}

func hasColorFunction(value string) bool {
	for _, prefix := range colorFunctions {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

func parseLeafKind(name string) layering.Kind {
	return layering.ParseKind(name)
}
