package usecase

import "context"

// strategy produces a value or reports that it has no answer. A
// strategy swallows its own failures; the chain only sees presence.
type strategy[T any] func(ctx context.Context) (T, bool)

// firstOf runs strategies in order and returns the first present
// result. It is the "first non-empty wins" combinator behind every
// multi-tier lookup in this package.
func firstOf[T any](ctx context.Context, strategies ...strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s(ctx); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
