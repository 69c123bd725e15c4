package jsonschema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	jschema "github.com/invopop/jsonschema"

	"github.com/goliatone/go-tokens/layering"
)

const (
	dimensionPattern = `^-?(\d+\.?\d*|\.\d+)(px|rem|em|%|vw|vh)?$`
	durationPattern  = `^(\d+\.?\d*|\.\d+)(ms|s)$`
)

type schemaNode struct {
	kind       layering.Kind
	properties map[string]*schemaNode
}

func newGroupNode() *schemaNode {
	return &schemaNode{kind: layering.KindGroup, properties: map[string]*schemaNode{}}
}

type fieldDescriptor struct {
	path string
	kind layering.Kind
}

// buildSchemaGraph turns flat leaf descriptors into a nested node tree.
func buildSchemaGraph(fields []fieldDescriptor) *schemaNode {
	root := newGroupNode()
	for _, field := range fields {
		segments := layering.SplitPath(field.path)
		current := root
		for i, segment := range segments {
			if i == len(segments)-1 {
				current.properties[segment] = &schemaNode{kind: field.kind}
				break
			}
			next, ok := current.properties[segment]
			if !ok {
				next = newGroupNode()
				current.properties[segment] = next
			}
			current = next
		}
	}
	return root
}

func (n *schemaNode) isGroup() bool {
	return n.kind == layering.KindGroup
}

func (n *schemaNode) names() []string {
	names := make([]string, 0, len(n.properties))
	for name := range n.properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (n *schemaNode) leafSchema(annotate bool) *jschema.Schema {
	var result *jschema.Schema
	switch n.kind {
	case layering.KindColor:
		result = &jschema.Schema{Type: "string", Format: "color"}
	case layering.KindDimension:
		result = &jschema.Schema{Type: "string", Pattern: dimensionPattern}
	case layering.KindDuration:
		result = &jschema.Schema{Type: "string", Pattern: durationPattern}
	default:
		result = &jschema.Schema{Type: "number"}
	}
	if annotate {
		result.Extras = map[string]any{"x-token-kind": n.kind.String()}
	}
	return result
}

// inline renders n without $defs references.
func (n *schemaNode) inline(required, annotate bool) *jschema.Schema {
	if !n.isGroup() {
		return n.leafSchema(annotate)
	}
	names := n.names()
	props := jschema.NewProperties()
	for _, name := range names {
		props.Set(name, n.properties[name].inline(required, annotate))
	}
	result := &jschema.Schema{
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: jschema.FalseSchema,
	}
	if required && len(names) > 0 {
		result.Required = names
	}
	return result
}

// Digest identifies the shape of n. Identical groups share a digest.
func (n *schemaNode) Digest() string {
	data, err := json.Marshal(n.inline(true, true))
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
