package layering

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownPath indicates a fragment names a key the base does not declare.
	// Overrides only replace leaves; they never add or remove them.
	ErrUnknownPath = errors.New("layering: path not declared by base")
	// ErrKindMismatch indicates a fragment value has a different kind than the
	// base node at the same path.
	ErrKindMismatch = errors.New("layering: kind mismatch")
	// ErrNilNode indicates a tree holds a nil node.
	ErrNilNode = errors.New("layering: nil node")
	// ErrEmptyGroup indicates a full table holds a branch without leaves.
	ErrEmptyGroup = errors.New("layering: group has no leaves")
	// ErrInvalidKey indicates an empty key or a key containing PathSeparator.
	ErrInvalidKey = errors.New("layering: invalid key")
)

// PathError reports the path where a tree operation failed.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("%v at %q", e.Err, path)
}

func (e *PathError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Clone returns a deep copy of g. Leaves are values so only groups are copied.
func Clone(g Group) Group {
	if g == nil {
		return nil
	}
	out := make(Group, len(g))
	for key, node := range g {
		if child, ok := node.(Group); ok {
			out[key] = Clone(child)
			continue
		}
		out[key] = node
	}
	return out
}

// Fold clones base and applies fragments in order using a leaf-level merge:
// nested groups recurse, leaves are overwritten. Later fragments win, so
// callers pass them from weakest to strongest. Fragments never change the
// shape of base.
func Fold(base Group, fragments ...Group) (Group, error) {
	merged := Clone(base)
	if merged == nil {
		merged = Group{}
	}
	for _, fragment := range fragments {
		if err := mergeInto(merged, fragment, ""); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// Conforms reports whether fragment could be folded onto base without
// changing its shape.
func Conforms(base, fragment Group) error {
	return checkFragment(base, fragment, "")
}

// ValidateTable checks a complete table: every key valid, no nil nodes and
// every branch terminating in at least one leaf.
func ValidateTable(g Group) error {
	if len(g) == 0 {
		return &PathError{Err: ErrEmptyGroup}
	}
	return validate(g, "", true)
}

// ValidateFragment checks a partial table. Empty groups are allowed since a
// fragment may override nothing below a key.
func ValidateFragment(g Group) error {
	return validate(g, "", false)
}

func validate(g Group, prefix string, full bool) error {
	for _, key := range sortedKeys(g) {
		path := JoinPath(prefix, key)
		if key == "" || strings.Contains(key, PathSeparator) {
			return &PathError{Path: path, Err: ErrInvalidKey}
		}
		switch typed := g[key].(type) {
		case nil:
			return &PathError{Path: path, Err: ErrNilNode}
		case Group:
			if full && len(typed) == 0 {
				return &PathError{Path: path, Err: ErrEmptyGroup}
			}
			if err := validate(typed, path, full); err != nil {
				return err
			}
		}
	}
	return nil
}

func mergeInto(dst, fragment Group, prefix string) error {
	for _, key := range sortedKeys(fragment) {
		path := JoinPath(prefix, key)
		value := fragment[key]
		if value == nil {
			return &PathError{Path: path, Err: ErrNilNode}
		}
		existing, ok := dst[key]
		if !ok || existing == nil {
			return &PathError{Path: path, Err: ErrUnknownPath}
		}
		if existing.Kind() != value.Kind() {
			return &PathError{Path: path, Err: fmt.Errorf("%w: base %s, fragment %s", ErrKindMismatch, existing.Kind(), value.Kind())}
		}
		if group, ok := existing.(Group); ok {
			if err := mergeInto(group, value.(Group), path); err != nil {
				return err
			}
			continue
		}
		dst[key] = value
	}
	return nil
}

func checkFragment(base, fragment Group, prefix string) error {
	for _, key := range sortedKeys(fragment) {
		path := JoinPath(prefix, key)
		value := fragment[key]
		if value == nil {
			return &PathError{Path: path, Err: ErrNilNode}
		}
		existing, ok := base[key]
		if !ok || existing == nil {
			return &PathError{Path: path, Err: ErrUnknownPath}
		}
		if existing.Kind() != value.Kind() {
			return &PathError{Path: path, Err: fmt.Errorf("%w: base %s, fragment %s", ErrKindMismatch, existing.Kind(), value.Kind())}
		}
		if group, ok := existing.(Group); ok {
			if err := checkFragment(group, value.(Group), path); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(g Group) []string {
	keys := make([]string, 0, len(g))
	for key := range g {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
