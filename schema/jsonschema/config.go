package jsonschema

// Draft is the JSON Schema dialect emitted by the generator; it matches the
// invopop/jsonschema Version constant.
const Draft = "https://json-schema.org/draft/2020-12/schema"

type generatorConfig struct {
	id           string
	title        string
	description  string
	inlineGroups bool
	kindKeyword  bool
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{kindKeyword: true}
}

// GeneratorOption configures the JSON Schema generator.
type GeneratorOption func(*generatorConfig)

// WithID sets the document $id.
func WithID(id string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.id = id
	}
}

// WithTitle sets the document title. Empty strings keep the default.
func WithTitle(title string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title == "" {
			return
		}
		cfg.title = title
	}
}

// WithDescription sets the document description.
func WithDescription(description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.description = description
	}
}

// WithInlineGroups disables $defs reuse; every group is emitted inline.
func WithInlineGroups() GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.inlineGroups = true
	}
}

// WithKindKeyword toggles the x-token-kind annotation on leaves (default on).
func WithKindKeyword(enabled bool) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.kindKeyword = enabled
	}
}
