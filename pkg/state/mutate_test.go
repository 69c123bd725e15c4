package state_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/layering"
	"github.com/goliatone/go-tokens/pkg/state"
)

type mutateStore struct {
	tables map[string]tokens.Group
	metas  map[string]state.Meta

	saveCalls int
	savedRef  state.Ref
	savedMeta state.Meta
	saveErr   error
	loadErr   error
}

func newMutateStore() *mutateStore {
	return &mutateStore{tables: map[string]tokens.Group{}, metas: map[string]state.Meta{}}
}

func (s *mutateStore) put(ref state.Ref, table tokens.Group, meta state.Meta) {
	key, _ := ref.Identifier()
	s.tables[key] = table
	s.metas[key] = meta
}

func (s *mutateStore) Load(_ context.Context, ref state.Ref) (tokens.Group, state.Meta, bool, error) {
	if s.loadErr != nil {
		return nil, state.Meta{}, false, s.loadErr
	}
	key, err := ref.Identifier()
	if err != nil {
		return nil, state.Meta{}, false, err
	}
	table, ok := s.tables[key]
	if !ok {
		return nil, state.Meta{}, false, nil
	}
	return layering.Clone(table), s.metas[key], true, nil
}

func (s *mutateStore) Save(_ context.Context, ref state.Ref, table tokens.Group, meta state.Meta) (state.Meta, error) {
	s.saveCalls++
	s.savedRef = ref
	s.savedMeta = meta
	if s.saveErr != nil {
		return state.Meta{}, s.saveErr
	}
	s.put(ref, table, meta)
	return meta, nil
}

func (s *mutateStore) List(context.Context, string, string) ([]state.Ref, error) {
	return nil, nil
}

func seededStore() *mutateStore {
	store := newMutateStore()
	store.put(state.Ref{Component: "button"}, tokens.Group{
		"padding": tokens.Dimension("8px"),
		"color":   tokens.Color("#fff"),
	}, state.Meta{SnapshotID: "snap-1", ETag: "v1"})
	return store
}

func TestLoaderMutateSavesWithFreshMeta(t *testing.T) {
	store := seededStore()
	loader := state.Loader{Store: store}

	table, meta, err := loader.Mutate(context.Background(), state.Ref{Component: "button"}, state.Meta{ETag: "v1"}, func(g tokens.Group) error {
		g["padding"] = tokens.Dimension("10px")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table["padding"]; got != tokens.Dimension("10px") {
		t.Fatalf("expected mutated padding, got %v", got)
	}
	if store.saveCalls != 1 {
		t.Fatalf("expected one save, got %d", store.saveCalls)
	}
	if meta.SnapshotID == "" || meta.SnapshotID == "snap-1" {
		t.Fatalf("expected fresh snapshot id, got %q", meta.SnapshotID)
	}
	if meta.ETag == "" || meta.ETag == "v1" {
		t.Fatalf("expected fresh etag, got %q", meta.ETag)
	}
	if meta.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt to be stamped")
	}
}

func TestLoaderMutateETagMismatch(t *testing.T) {
	store := seededStore()
	loader := state.Loader{Store: store}

	_, meta, err := loader.Mutate(context.Background(), state.Ref{Component: "button"}, state.Meta{ETag: "stale"}, func(tokens.Group) error {
		t.Fatalf("mutator must not run on etag mismatch")
		return nil
	})
	if !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}
	if meta.ETag != "v1" {
		t.Fatalf("expected loaded meta to be returned, got %+v", meta)
	}
	if store.saveCalls != 0 {
		t.Fatalf("expected no save calls, got %d", store.saveCalls)
	}
}

func TestLoaderMutateValidationFailureDoesNotSave(t *testing.T) {
	cases := []struct {
		name   string
		ref    state.Ref
		mutate func(tokens.Group) error
	}{
		{
			name: "nil leaf in base",
			ref:  state.Ref{Component: "button"},
			mutate: func(g tokens.Group) error {
				g["padding"] = nil
				return nil
			},
		},
		{
			name: "override changes kind",
			ref:  state.Ref{Component: "button", Breakpoint: "md"},
			mutate: func(g tokens.Group) error {
				g["padding"] = tokens.Color("#000")
				return nil
			},
		},
		{
			name: "override adds unknown leaf",
			ref:  state.Ref{Component: "button", Breakpoint: "md"},
			mutate: func(g tokens.Group) error {
				g["margin"] = tokens.Dimension("4px")
				return nil
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := seededStore()
			loader := state.Loader{Store: store}
			if _, _, err := loader.Mutate(context.Background(), tc.ref, state.Meta{}, tc.mutate); err == nil {
				t.Fatalf("expected validation error")
			}
			if store.saveCalls != 0 {
				t.Fatalf("expected no save calls, got %d", store.saveCalls)
			}
		})
	}
}

func TestLoaderMutateCreatesOverride(t *testing.T) {
	store := seededStore()
	loader := state.Loader{Store: store}

	ref := state.Ref{Component: "button", Breakpoint: "md"}
	_, meta, err := loader.Mutate(context.Background(), ref, state.Meta{When: `args.theme == "dark"`}, func(g tokens.Group) error {
		g["padding"] = tokens.Dimension("12px")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.When != `args.theme == "dark"` {
		t.Fatalf("expected guard to be stored, got %q", meta.When)
	}
	if store.savedRef != ref {
		t.Fatalf("expected save for %+v, got %+v", ref, store.savedRef)
	}
}

func TestLoaderMutateSurfacesStoreErrors(t *testing.T) {
	store := seededStore()
	store.saveErr = errors.New("disk full")
	loader := state.Loader{Store: store}

	_, _, err := loader.Mutate(context.Background(), state.Ref{Component: "button"}, state.Meta{}, func(tokens.Group) error { return nil })
	if !errors.Is(err, store.saveErr) {
		t.Fatalf("expected save error to be wrapped, got %v", err)
	}

	mutatorErr := errors.New("refused")
	_, _, err = loader.Mutate(context.Background(), state.Ref{Component: "button"}, state.Meta{}, func(tokens.Group) error { return mutatorErr })
	if !errors.Is(err, mutatorErr) {
		t.Fatalf("expected mutator error, got %v", err)
	}

	if _, _, err := (state.Loader{}).Mutate(context.Background(), state.Ref{Component: "button"}, state.Meta{}, func(tokens.Group) error { return nil }); err == nil {
		t.Fatalf("expected error without store")
	}
}

func seededMemoryStore(t *testing.T) (*state.MemoryStore, state.Meta) {
	t.Helper()
	store := state.NewMemoryStore()
	meta, err := store.Save(context.Background(), state.Ref{Component: "button"}, tokens.Group{
		"padding": tokens.Dimension("8px"),
		"color":   tokens.Color("#fff"),
	}, state.Meta{SnapshotID: "snap-1", ETag: "v1"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store, meta
}

func TestLoaderMutateDetectsWriteAfterLoad(t *testing.T) {
	ctx := context.Background()
	store, seeded := seededMemoryStore(t)
	loader := state.Loader{Store: store}
	ref := state.Ref{Component: "button"}

	_, _, err := loader.Mutate(ctx, ref, state.Meta{ETag: seeded.ETag}, func(g tokens.Group) error {
		if _, _, err := loader.Mutate(ctx, ref, state.Meta{ETag: seeded.ETag}, func(inner tokens.Group) error {
			inner["padding"] = tokens.Dimension("12px")
			return nil
		}); err != nil {
			t.Fatalf("competing mutate: %v", err)
		}
		g["padding"] = tokens.Dimension("10px")
		return nil
	})
	if !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}

	table, _, _, _ := store.Load(ctx, ref)
	if got := table["padding"]; got != tokens.Dimension("12px") {
		t.Fatalf("expected the competing write to survive, got %v", got)
	}
}

func TestLoaderMutateConcurrentWritersSingleWinner(t *testing.T) {
	ctx := context.Background()
	store, seeded := seededMemoryStore(t)
	loader := state.Loader{Store: store}
	ref := state.Ref{Component: "button"}

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := loader.Mutate(ctx, ref, state.Meta{ETag: seeded.ETag}, func(g tokens.Group) error {
				g["padding"] = tokens.Dimension(fmt.Sprintf("%dpx", i))
				return nil
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, state.ErrETagMismatch):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 || conflicts != writers-1 {
		t.Fatalf("expected one winner and %d conflicts, got %d wins %d conflicts", writers-1, wins, conflicts)
	}
}
