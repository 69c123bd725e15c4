package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	tokens "github.com/goliatone/go-tokens"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Document is a YAML token file:
//
//	evaluator: expr
//	args: {theme: dark}
//	breakpoints:
//	  - {name: md, minWidth: 768}
//	components:
//	  button:
//	    base: {...}
//	    overrides:
//	      md:
//	        when: theme == "dark"
//	        tokens: {...}
type Document struct {
	Evaluator   string                   `yaml:"evaluator" validate:"omitempty,oneof=expr cel js"`
	Args        map[string]any           `yaml:"args"`
	Metadata    map[string]any           `yaml:"metadata"`
	Breakpoints []BreakpointSpec         `yaml:"breakpoints" validate:"dive"`
	Components  map[string]ComponentSpec `yaml:"components" validate:"required,min=1,dive,keys,token_key,endkeys"`
}

// BreakpointSpec declares one viewport threshold.
type BreakpointSpec struct {
	Name     string `yaml:"name" validate:"required,token_key"`
	MinWidth int    `yaml:"minWidth" validate:"gte=0"`
}

// ComponentSpec holds a component's base table, optional explicit schema
// (path to kind) and overrides keyed by breakpoint name.
type ComponentSpec struct {
	Schema    map[string]string       `yaml:"schema" validate:"omitempty,dive,keys,required,endkeys,token_kind"`
	Base      map[string]any          `yaml:"base" validate:"required,min=1"`
	Overrides map[string]OverrideSpec `yaml:"overrides" validate:"omitempty,dive,keys,token_key,endkeys"`
}

// OverrideSpec is a partial table with an optional guard.
type OverrideSpec struct {
	When   string         `yaml:"when"`
	Tokens map[string]any `yaml:"tokens" validate:"required"`
}

// Load reads and validates a token document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	return Parse(data, path)
}

// Parse decodes and validates a token document. source names the document in
// error messages.
func Parse(data []byte, source string) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Source: source, Line: extractLine(err), Err: err}
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// BreakpointRegistry builds the breakpoint registry the document declares.
func (d *Document) BreakpointRegistry() (*tokens.Breakpoints, error) {
	defs := make([]tokens.Breakpoint, 0, len(d.Breakpoints))
	for _, spec := range d.Breakpoints {
		defs = append(defs, tokens.Breakpoint{Name: spec.Name, MinWidth: spec.MinWidth})
	}
	return tokens.NewBreakpoints(defs...)
}

// ComponentNames lists declared components sorted by name.
func (d *Document) ComponentNames() []string {
	names := lo.Keys(d.Components)
	sort.Strings(names)
	return names
}

// EngineOptions translates document level settings into engine options.
func (d *Document) EngineOptions() []tokens.Option {
	opts := []tokens.Option{}
	if d.Evaluator != "" {
		opts = append(opts, tokens.WithEvaluatorEngine(d.Evaluator))
	}
	if len(d.Args) > 0 {
		opts = append(opts, tokens.WithArgs(d.Args))
	}
	if len(d.Metadata) > 0 {
		opts = append(opts, tokens.WithMetadata(d.Metadata))
	}
	return opts
}

// NewEngine builds an engine from the document and registers every
// component. Caller options are applied after the document's own.
func NewEngine(doc *Document, opts ...tokens.Option) (*tokens.Engine, error) {
	if doc == nil {
		return nil, newValidationError("document", "document is nil", nil)
	}
	bps, err := doc.BreakpointRegistry()
	if err != nil {
		return nil, err
	}
	engine, err := tokens.New(bps, append(doc.EngineOptions(), opts...)...)
	if err != nil {
		return nil, err
	}
	if err := Apply(doc, engine); err != nil {
		engine.Close()
		return nil, err
	}
	return engine, nil
}

// Apply registers every component of doc with engine: schema first, then
// the base table, then overrides in breakpoint name order.
func Apply(doc *Document, engine *tokens.Engine) error {
	for _, name := range doc.ComponentNames() {
		spec := doc.Components[name]

		if len(spec.Schema) > 0 {
			schema, err := spec.schema()
			if err != nil {
				return newValidationError(fieldFor(name, "schema"), err.Error(), err)
			}
			if err := engine.RegisterSchema(name, schema); err != nil {
				return err
			}
		}

		base, err := ToGroup(spec.Base)
		if err != nil {
			return newValidationError(fieldFor(name, "base"), err.Error(), err)
		}
		if err := engine.RegisterBase(name, base); err != nil {
			return err
		}

		bps := lo.Keys(spec.Overrides)
		sort.Strings(bps)
		for _, bp := range bps {
			override := spec.Overrides[bp]
			fragment, err := ToGroup(override.Tokens)
			if err != nil {
				return newValidationError(fieldFor(name, "overrides", bp), err.Error(), err)
			}
			var opts []tokens.OverrideOption
			if override.When != "" {
				opts = append(opts, tokens.WithWhen(override.When))
			}
			if err := engine.RegisterOverride(name, bp, fragment, opts...); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c ComponentSpec) schema() (tokens.Schema, error) {
	fields := make([]tokens.FieldDescriptor, 0, len(c.Schema))
	for path, kind := range c.Schema {
		fields = append(fields, tokens.FieldDescriptor{Path: path, Kind: parseLeafKind(kind)})
	}
	return tokens.NewSchema(fields...)
}

func fieldFor(parts ...string) string {
	field := "components"
	for _, part := range parts {
		field += "." + part
	}
	return field
}

func extractLine(err error) int {
	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}
	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}
