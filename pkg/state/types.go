package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/layering"
)

// DefaultTheme names the namespace used when Ref.Theme is empty.
const DefaultTheme = "default"

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted table.
type Ref struct {
	Theme      string
	Component  string
	Breakpoint string
}

// IsBase reports whether r names a component's base table.
func (r Ref) IsBase() bool {
	return r.Breakpoint == ""
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	When       string            `json:"when,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one table for a single ref.
type Store interface {
	Load(ctx context.Context, ref Ref) (table tokens.Group, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, table tokens.Group, meta Meta) (Meta, error)
	List(ctx context.Context, theme, component string) ([]Ref, error)
}

// ConditionalStore saves only when the stored ETag still equals etag. An
// empty etag expects no stored ETag. Mutate prefers it over Save so the
// ETag check and the write happen under one lock.
type ConditionalStore interface {
	Store
	SaveIfMatch(ctx context.Context, ref Ref, etag string, table tokens.Group, meta Meta) (Meta, error)
}

// Mutator edits a table in place.
type Mutator func(tokens.Group) error

// Identifier returns the canonical storage key theme/component/breakpoint.
// Base tables use the "@base" segment so a registered "base" breakpoint
// override keeps its own key.
func (r Ref) Identifier() (string, error) {
	theme := r.Theme
	if theme == "" {
		theme = DefaultTheme
	}
	if r.Component == "" {
		return "", fmt.Errorf("state: component is required")
	}
	for _, part := range []string{theme, r.Component, r.Breakpoint} {
		if strings.Contains(part, "/") {
			return "", fmt.Errorf("state: %q must not contain '/'", part)
		}
	}
	segment := r.Breakpoint
	if r.IsBase() {
		segment = "@base"
	}
	return fmt.Sprintf("%s/%s/%s", theme, r.Component, segment), nil
}

// Loader moves component tables between a Store and an engine.
type Loader struct {
	Store Store
	now   func() time.Time
}

func (l Loader) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

// Register loads the base table and every override persisted for component
// under theme and registers them with engine, base first. It returns the
// number of tables registered.
func (l Loader) Register(ctx context.Context, engine *tokens.Engine, theme, component string) (int, error) {
	if l.Store == nil {
		return 0, fmt.Errorf("state: store is required")
	}
	if engine == nil {
		return 0, fmt.Errorf("state: engine is required")
	}

	baseRef := Ref{Theme: theme, Component: component}
	base, _, ok, err := l.Store.Load(ctx, baseRef)
	if err != nil {
		return 0, fmt.Errorf("state: load base for %q: %w", component, err)
	}
	if !ok {
		return 0, fmt.Errorf("state: no base table for %q in theme %q", component, themeName(theme))
	}
	if err := engine.RegisterBase(component, base); err != nil {
		return 0, err
	}
	count := 1

	refs, err := l.Store.List(ctx, theme, component)
	if err != nil {
		return count, fmt.Errorf("state: list %q: %w", component, err)
	}
	for _, ref := range refs {
		if ref.IsBase() {
			continue
		}
		fragment, meta, ok, err := l.Store.Load(ctx, ref)
		if err != nil {
			return count, fmt.Errorf("state: load %q@%s: %w", component, ref.Breakpoint, err)
		}
		if !ok {
			continue
		}
		var opts []tokens.OverrideOption
		if meta.When != "" {
			opts = append(opts, tokens.WithWhen(meta.When))
		}
		if err := engine.RegisterOverride(component, ref.Breakpoint, fragment, opts...); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Capture saves component's base table and overrides from engine under theme.
func (l Loader) Capture(ctx context.Context, engine *tokens.Engine, theme, component string) ([]Ref, error) {
	if l.Store == nil {
		return nil, fmt.Errorf("state: store is required")
	}
	base, ok := engine.Store().Base(component)
	if !ok {
		return nil, fmt.Errorf("%w: %q", tokens.ErrUnknownComponent, component)
	}

	saved := make([]Ref, 0, 1)
	baseRef := Ref{Theme: theme, Component: component}
	if _, err := l.Store.Save(ctx, baseRef, base, l.freshMeta(Meta{})); err != nil {
		return nil, fmt.Errorf("state: save base for %q: %w", component, err)
	}
	saved = append(saved, baseRef)

	for _, override := range engine.Store().Overrides(component) {
		ref := Ref{Theme: theme, Component: component, Breakpoint: override.Breakpoint.Name}
		if _, err := l.Store.Save(ctx, ref, override.Fragment, l.freshMeta(Meta{When: override.When})); err != nil {
			return saved, fmt.Errorf("state: save %q@%s: %w", component, ref.Breakpoint, err)
		}
		saved = append(saved, ref)
	}
	return saved, nil
}

// Mutate loads one table, applies fn to a copy, validates the result and
// saves it. A non-empty meta.ETag must match the stored ETag. Override
// fragments are checked against the stored base of the same theme.
//
// With a ConditionalStore the save fails with ErrETagMismatch when another
// writer saved the ref after it was loaded. A plain Store cannot detect that
// race.
func (l Loader) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (tokens.Group, Meta, error) {
	if l.Store == nil {
		return nil, Meta{}, fmt.Errorf("state: store is required")
	}
	if ref.Component == "" {
		return nil, Meta{}, fmt.Errorf("state: component is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}

	table, loadedMeta, ok, err := l.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %s: %w", describeRef(ref), err)
	}
	if !ok {
		table = tokens.Group{}
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	working := layering.Clone(table)
	if err := fn(working); err != nil {
		return nil, loadedMeta, err
	}
	if err := l.validate(ctx, ref, working); err != nil {
		return nil, loadedMeta, err
	}

	saveMeta := l.freshMeta(mergeMeta(loadedMeta, meta))
	var savedMeta Meta
	if conditional, ok := l.Store.(ConditionalStore); ok {
		savedMeta, err = conditional.SaveIfMatch(ctx, ref, loadedMeta.ETag, working, saveMeta)
	} else {
		savedMeta, err = l.Store.Save(ctx, ref, working, saveMeta)
	}
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %s: %w", describeRef(ref), err)
	}
	return working, savedMeta, nil
}

func (l Loader) validate(ctx context.Context, ref Ref, table tokens.Group) error {
	if ref.IsBase() {
		return layering.ValidateTable(table)
	}
	if err := layering.ValidateFragment(table); err != nil {
		return err
	}
	base, _, ok, err := l.Store.Load(ctx, Ref{Theme: ref.Theme, Component: ref.Component})
	if err != nil {
		return fmt.Errorf("state: load base for %q: %w", ref.Component, err)
	}
	if !ok {
		return nil
	}
	return layering.Conforms(base, table)
}

// freshMeta stamps a new snapshot id and etag.
func (l Loader) freshMeta(meta Meta) Meta {
	meta.SnapshotID = uuid.NewString()
	meta.ETag = uuid.NewString()
	meta.UpdatedAt = l.clock().UTC()
	return meta
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.When != "" {
		out.When = override.When
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

func describeRef(ref Ref) string {
	if ref.IsBase() {
		return fmt.Sprintf("%s base of %q", themeName(ref.Theme), ref.Component)
	}
	return fmt.Sprintf("%s %q@%s", themeName(ref.Theme), ref.Component, ref.Breakpoint)
}

func themeName(theme string) string {
	if theme == "" {
		return DefaultTheme
	}
	return theme
}

func sortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].IsBase() != refs[j].IsBase() {
			return refs[i].IsBase()
		}
		return refs[i].Breakpoint < refs[j].Breakpoint
	})
}
