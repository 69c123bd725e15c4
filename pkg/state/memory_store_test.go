package state_test

import (
	"context"
	"errors"
	"testing"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/pkg/state"
)

func TestRefIdentifier(t *testing.T) {
	cases := []struct {
		name   string
		ref    state.Ref
		expect string
		err    bool
	}{
		{name: "base defaults theme", ref: state.Ref{Component: "button"}, expect: "default/button/@base"},
		{name: "override", ref: state.Ref{Theme: "dark", Component: "button", Breakpoint: "md"}, expect: "dark/button/md"},
		{name: "registered base breakpoint", ref: state.Ref{Component: "button", Breakpoint: "base"}, expect: "default/button/base"},
		{name: "missing component", ref: state.Ref{Theme: "dark"}, err: true},
		{name: "slash in name", ref: state.Ref{Component: "a/b"}, err: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ref.Identifier()
			if tc.err {
				if err == nil {
					t.Fatalf("expected error, got identifier %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expect {
				t.Fatalf("expected identifier %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestMemoryStoreRoundTripCopies(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	ref := state.Ref{Component: "button"}

	table := tokens.Group{"padding": tokens.Dimension("8px")}
	if _, err := store.Save(ctx, ref, table, state.Meta{SnapshotID: "snap-1", Extra: map[string]string{"by": "ci"}}); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	table["padding"] = tokens.Dimension("99px")

	loaded, meta, ok, err := store.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("expected stored table, got ok=%v err=%v", ok, err)
	}
	if got := loaded["padding"]; got != tokens.Dimension("8px") {
		t.Fatalf("expected stored copy to be isolated, got %v", got)
	}
	if meta.SnapshotID != "snap-1" || meta.Extra["by"] != "ci" {
		t.Fatalf("expected meta to round trip, got %+v", meta)
	}

	loaded["padding"] = tokens.Dimension("1px")
	again, _, _, _ := store.Load(ctx, ref)
	if got := again["padding"]; got != tokens.Dimension("8px") {
		t.Fatalf("expected loaded copy to be isolated, got %v", got)
	}
}

func TestMemoryStoreListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	refs := []state.Ref{
		{Component: "button", Breakpoint: "md"},
		{Component: "button"},
		{Component: "button", Breakpoint: "lg"},
		{Theme: "dark", Component: "button"},
		{Component: "card"},
	}
	for _, ref := range refs {
		if _, err := store.Save(ctx, ref, tokens.Group{}, state.Meta{}); err != nil {
			t.Fatalf("unexpected save error: %v", err)
		}
	}

	listed, err := store.List(ctx, "", "button")
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 refs, got %d (%v)", len(listed), listed)
	}
	if !listed[0].IsBase() || listed[1].Breakpoint != "lg" || listed[2].Breakpoint != "md" {
		t.Fatalf("expected base, lg, md order, got %v", listed)
	}

	missing, _, ok, err := store.Load(ctx, state.Ref{Component: "modal"})
	if err != nil || ok || missing != nil {
		t.Fatalf("expected miss for unknown component, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreSaveIfMatch(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	ref := state.Ref{Component: "button"}
	table := tokens.Group{"padding": tokens.Dimension("8px")}

	if _, err := store.SaveIfMatch(ctx, ref, "v0", table, state.Meta{ETag: "v1"}); !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected mismatch for a missing ref with an etag, got %v", err)
	}
	if _, err := store.SaveIfMatch(ctx, ref, "", table, state.Meta{ETag: "v1"}); err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if _, err := store.SaveIfMatch(ctx, ref, "", table, state.Meta{ETag: "v2"}); !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected mismatch once the ref exists, got %v", err)
	}
	if _, err := store.SaveIfMatch(ctx, ref, "v1", table, state.Meta{ETag: "v2"}); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	_, meta, _, _ := store.Load(ctx, ref)
	if meta.ETag != "v2" {
		t.Fatalf("expected etag v2, got %q", meta.ETag)
	}
}
