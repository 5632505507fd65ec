// Package resolution implements ordered fallback chains over named data
// sources. A chain tries each source in order: errors are logged and
// swallowed, empty results move on to the next source, and the first
// non-empty result wins. Results from different sources are never merged.
package resolution

import (
	"context"
	"log"
)

// Source is one named data source in a chain. Fetch returns the value and
// whether the source had data; an error counts as "no data" after logging.
type Source[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (T, bool, error)
}

// Result is the outcome of resolving a chain. When Found is false the chain
// was exhausted and Value is the zero value.
type Result[T any] struct {
	Value  T
	Source string
	Found  bool
}

// Chain resolves a value through an ordered list of sources.
type Chain[T any] struct {
	logger  *log.Logger
	sources []Source[T]
}

// NewChain builds a chain over the given sources. A nil logger falls back
// to the default logger.
func NewChain[T any](logger *log.Logger, sources ...Source[T]) *Chain[T] {
	if logger == nil {
		logger = log.Default()
	}
	return &Chain[T]{logger: logger, sources: sources}
}

// Resolve tries each source in order and returns the first non-empty
// result. A source failure never fails the resolution; it is logged and the
// chain moves on.
func (c *Chain[T]) Resolve(ctx context.Context) Result[T] {
	for _, s := range c.sources {
		if err := ctx.Err(); err != nil {
			c.logger.Printf("[resolution] aborted before %s: %v", s.Name, err)
			break
		}

		value, ok, err := s.Fetch(ctx)
		if err != nil {
			c.logger.Printf("[resolution] source %s failed: %v", s.Name, err)
			continue
		}
		if !ok {
			continue
		}
		return Result[T]{Value: value, Source: s.Name, Found: true}
	}
	return Result[T]{}
}
