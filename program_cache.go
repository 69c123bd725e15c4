package tokens

import (
	"sync"

	"github.com/google/uuid"
)

// ProgramCache stores compiled guard programs keyed by engine and expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// NewProgramCache returns a concurrency-safe in-memory ProgramCache.
func NewProgramCache() ProgramCache {
	return &memoryProgramCache{}
}

type memoryProgramCache struct {
	programs sync.Map
}

func (c *memoryProgramCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *memoryProgramCache) Set(key string, value any) {
	c.programs.Store(key, value)
}

// programKey builds the cache key for expression. Programs compiled with
// registry bindings close over their evaluator, so scope identifies that
// evaluator; uuid.Nil means no bindings and the program is shared.
func programKey(engine string, scope uuid.UUID, expression string) string {
	if scope == uuid.Nil {
		return engine + ":" + expression
	}
	return engine + ":" + scope.String() + ":" + expression
}
