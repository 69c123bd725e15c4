package jsonschema

import (
	"fmt"
	"regexp"
	"strings"

	jschema "github.com/invopop/jsonschema"
)

// defsRegistry collects group shapes that occur more than once so they can
// be published under $defs and referenced.
type defsRegistry struct {
	entries   map[string]*defEntry
	usedNames map[string]struct{}
}

type defEntry struct {
	name   string
	schema *jschema.Schema
	count  int
}

func newDefsRegistry() *defsRegistry {
	return &defsRegistry{
		entries:   map[string]*defEntry{},
		usedNames: map[string]struct{}{},
	}
}

// count records every group below root (root excluded) by digest.
func (r *defsRegistry) count(root *schemaNode, nameHint string) {
	for _, name := range root.names() {
		child := root.properties[name]
		if !child.isGroup() {
			continue
		}
		hint := combineDefName(nameHint, name)
		digest := child.Digest()
		if entry, ok := r.entries[digest]; ok {
			entry.count++
		} else {
			r.entries[digest] = &defEntry{name: hint, count: 1}
		}
		r.count(child, hint)
	}
}

// lookup returns the shared entry for node's shape, if any.
func (r *defsRegistry) lookup(node *schemaNode) (*defEntry, bool) {
	entry, ok := r.entries[node.Digest()]
	if !ok || entry.count < 2 {
		return nil, false
	}
	return entry, true
}

func (r *defsRegistry) uniqueName(name string) string {
	safe := sanitizeDefName(name)
	if safe == "" {
		safe = "Group"
	}
	if _, exists := r.usedNames[safe]; !exists {
		r.usedNames[safe] = struct{}{}
		return safe
	}
	suffix := 1
	for {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := r.usedNames[candidate]; !exists {
			r.usedNames[candidate] = struct{}{}
			return candidate
		}
		suffix++
	}
}

func (r *defsRegistry) definitions() jschema.Definitions {
	out := jschema.Definitions{}
	for _, entry := range r.entries {
		if entry.schema != nil {
			out[entry.name] = entry.schema
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func combineDefName(parts ...string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	if len(filtered) == 0 {
		return "Group"
	}
	return strings.Join(filtered, "_")
}

var defNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeDefName(name string) string {
	name = strings.Trim(defNameRegexp.ReplaceAllString(name, "_"), "_")
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
