package state

import (
	"context"
	"fmt"
	"sync"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/layering"
)

// MemoryStore is a minimal in-memory Store intended for tests and examples.
// It keys records by Ref.Identifier and copies tables on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	ref   Ref
	table tokens.Group
	meta  Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) (tokens.Group, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return layering.Clone(record.table), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore) Save(_ context.Context, ref Ref, table tokens.Group, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	s.put(key, ref, table, meta)
	s.mu.Unlock()
	return cloneMeta(meta), nil
}

// SaveIfMatch implements ConditionalStore.
func (s *MemoryStore) SaveIfMatch(_ context.Context, ref Ref, etag string, table tokens.Group, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.records[key].meta.ETag
	if current != etag {
		return Meta{}, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, etag, current)
	}
	s.put(key, ref, table, meta)
	return cloneMeta(meta), nil
}

func (s *MemoryStore) put(key string, ref Ref, table tokens.Group, meta Meta) {
	if ref.Theme == "" {
		ref.Theme = DefaultTheme
	}
	s.records[key] = memoryRecord{ref: ref, table: layering.Clone(table), meta: cloneMeta(meta)}
}

// List returns the refs stored for component under theme, base first.
func (s *MemoryStore) List(_ context.Context, theme, component string) ([]Ref, error) {
	theme = themeName(theme)

	s.mu.RLock()
	refs := make([]Ref, 0)
	for _, record := range s.records {
		if record.ref.Theme == theme && record.ref.Component == component {
			refs = append(refs, record.ref)
		}
	}
	s.mu.RUnlock()

	sortRefs(refs)
	return refs, nil
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
