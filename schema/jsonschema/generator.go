package jsonschema

import (
	"fmt"
	"strings"

	jschema "github.com/invopop/jsonschema"

	tokens "github.com/goliatone/go-tokens"
)

const defsPrefix = "#/$defs/"

// Generate emits a JSON Schema describing a complete token table: every
// declared leaf is required and no other keys are allowed.
func Generate(schema tokens.Schema, opts ...GeneratorOption) (*jschema.Schema, error) {
	return generate(schema, true, opts)
}

// GenerateFragment emits a JSON Schema for override fragments of the same
// component: the shape is identical but nothing is required.
func GenerateFragment(schema tokens.Schema, opts ...GeneratorOption) (*jschema.Schema, error) {
	return generate(schema, false, opts)
}

func generate(schema tokens.Schema, required bool, opts []GeneratorOption) (*jschema.Schema, error) {
	if schema.IsZero() {
		return nil, fmt.Errorf("jsonschema: schema declares no leaves")
	}
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	fields := make([]fieldDescriptor, 0, schema.Len())
	for _, field := range schema.Fields() {
		fields = append(fields, fieldDescriptor{path: field.Path, kind: field.Kind})
	}
	root := buildSchemaGraph(fields)

	b := &documentBuilder{config: cfg, required: required, registry: newDefsRegistry()}
	if !cfg.inlineGroups {
		b.registry.count(root, "")
	}
	document := b.group(root)
	document.Version = Draft
	document.ID = jschema.ID(cfg.id)
	document.Title = cfg.title
	document.Description = cfg.description
	if defs := b.registry.definitions(); defs != nil {
		document.Definitions = defs
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

type documentBuilder struct {
	config   generatorConfig
	required bool
	registry *defsRegistry
}

func (b *documentBuilder) schemaFor(node *schemaNode) *jschema.Schema {
	if !node.isGroup() {
		return node.leafSchema(b.config.kindKeyword)
	}
	if b.config.inlineGroups {
		return b.group(node)
	}
	entry, shared := b.registry.lookup(node)
	if !shared {
		return b.group(node)
	}
	if entry.schema == nil {
		entry.name = b.registry.uniqueName(entry.name)
		entry.schema = b.group(node)
	}
	return &jschema.Schema{Ref: defsPrefix + entry.name}
}

func (b *documentBuilder) group(node *schemaNode) *jschema.Schema {
	names := node.names()
	props := jschema.NewProperties()
	for _, name := range names {
		props.Set(name, b.schemaFor(node.properties[name]))
	}
	result := &jschema.Schema{
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: jschema.FalseSchema,
	}
	if b.required && len(names) > 0 {
		result.Required = names
	}
	return result
}

// validateDocument checks the dialect marker and that every $ref resolves.
func validateDocument(document *jschema.Schema) error {
	if document == nil {
		return fmt.Errorf("jsonschema: document cannot be nil")
	}
	if document.Version == "" {
		return fmt.Errorf("jsonschema: document missing $schema")
	}
	if err := checkRefs(document, document.Definitions, "#"); err != nil {
		return err
	}
	for name, def := range document.Definitions {
		if def == nil {
			return fmt.Errorf("jsonschema: $defs/%s invalid payload", name)
		}
		if err := checkRefs(def, document.Definitions, "#/$defs/"+name); err != nil {
			return err
		}
	}
	return nil
}

func checkRefs(schema *jschema.Schema, defs jschema.Definitions, at string) error {
	if schema.Ref != "" {
		name := strings.TrimPrefix(schema.Ref, defsPrefix)
		if name == schema.Ref {
			return fmt.Errorf("jsonschema: %s: unsupported $ref %q", at, schema.Ref)
		}
		if _, ok := defs[name]; !ok {
			return fmt.Errorf("jsonschema: %s: dangling $ref %q", at, schema.Ref)
		}
	}
	if schema.Properties == nil {
		return nil
	}
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			return fmt.Errorf("jsonschema: %s/properties/%s invalid payload", at, pair.Key)
		}
		if err := checkRefs(pair.Value, defs, at+"/properties/"+pair.Key); err != nil {
			return err
		}
	}
	return nil
}
