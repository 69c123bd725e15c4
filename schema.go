package tokens

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-tokens/layering"
)

// FieldDescriptor names one required leaf and its kind.
type FieldDescriptor struct {
	Path string        `json:"path"`
	Kind layering.Kind `json:"kind"`
}

// Schema is the closed set of leaves a component's token table must carry.
// The zero Schema declares nothing.
type Schema struct {
	fields []FieldDescriptor
	index  map[string]layering.Kind
}

// NewSchema builds a schema from explicit descriptors. Paths must be unique,
// non-empty and must not nest under one another; kinds must be leaf kinds.
func NewSchema(fields ...FieldDescriptor) (Schema, error) {
	index := make(map[string]layering.Kind, len(fields))
	for _, field := range fields {
		path := strings.TrimSpace(field.Path)
		if path == "" {
			return Schema{}, fmt.Errorf("%w: schema path must be provided", ErrShapeMismatch)
		}
		if !field.Kind.IsLeaf() {
			return Schema{}, fmt.Errorf("%w: schema path %q has non-leaf kind %s", ErrShapeMismatch, path, field.Kind)
		}
		if _, exists := index[path]; exists {
			return Schema{}, fmt.Errorf("%w: schema path %q declared twice", ErrShapeMismatch, path)
		}
		index[path] = field.Kind
	}
	schema := newSchemaFromIndex(index)
	for i := 1; i < len(schema.fields); i++ {
		prev, next := schema.fields[i-1].Path, schema.fields[i].Path
		if strings.HasPrefix(next, prev+layering.PathSeparator) {
			return Schema{}, fmt.Errorf("%w: schema leaf %q cannot also be a group for %q", ErrShapeMismatch, prev, next)
		}
	}
	return schema, nil
}

// SchemaOf derives the schema declared by a complete table.
func SchemaOf(table Group) Schema {
	leaves := table.Leaves()
	index := make(map[string]layering.Kind, len(leaves))
	for _, leaf := range leaves {
		index[leaf.Path] = leaf.Value.Kind()
	}
	return newSchemaFromIndex(index)
}

func newSchemaFromIndex(index map[string]layering.Kind) Schema {
	fields := make([]FieldDescriptor, 0, len(index))
	for path, kind := range index {
		fields = append(fields, FieldDescriptor{Path: path, Kind: kind})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return Schema{fields: fields, index: index}
}

// Fields returns the descriptors sorted by path.
func (s Schema) Fields() []FieldDescriptor {
	if len(s.fields) == 0 {
		return nil
	}
	out := make([]FieldDescriptor, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of required leaves.
func (s Schema) Len() int {
	return len(s.fields)
}

// IsZero reports whether the schema declares nothing.
func (s Schema) IsZero() bool {
	return len(s.fields) == 0
}

// Kind returns the kind declared for path.
func (s Schema) Kind(path string) (layering.Kind, bool) {
	kind, ok := s.index[path]
	return kind, ok
}

// Check verifies that table carries exactly the declared leaves with the
// declared kinds. It returns a *layering.PathError wrapping ErrMissingLeaf or
// ErrShapeMismatch for the first violation in path order.
func (s Schema) Check(table Group) error {
	present := make(map[string]layering.Kind)
	for _, leaf := range table.Leaves() {
		present[leaf.Path] = leaf.Value.Kind()
	}
	for _, field := range s.fields {
		kind, ok := present[field.Path]
		if !ok {
			return &layering.PathError{Path: field.Path, Err: ErrMissingLeaf}
		}
		if kind != field.Kind {
			return &layering.PathError{Path: field.Path, Err: fmt.Errorf("%w: declared %s, found %s", ErrShapeMismatch, field.Kind, kind)}
		}
	}
	if len(present) == len(s.fields) {
		return nil
	}
	extras := make([]string, 0)
	for path := range present {
		if _, ok := s.index[path]; !ok {
			extras = append(extras, path)
		}
	}
	sort.Strings(extras)
	return &layering.PathError{Path: extras[0], Err: fmt.Errorf("%w: leaf not declared by schema", ErrShapeMismatch)}
}

// CheckFragment verifies that every leaf of a partial table is declared with
// the same kind.
func (s Schema) CheckFragment(fragment Group) error {
	for _, leaf := range fragment.Leaves() {
		kind, ok := s.index[leaf.Path]
		if !ok {
			return &layering.PathError{Path: leaf.Path, Err: fmt.Errorf("%w: leaf not declared by schema", ErrShapeMismatch)}
		}
		if kind != leaf.Value.Kind() {
			return &layering.PathError{Path: leaf.Path, Err: fmt.Errorf("%w: declared %s, found %s", ErrShapeMismatch, kind, leaf.Value.Kind())}
		}
	}
	return nil
}
