package idempotency

import "context"

// Store is the key-presence contract the event gate needs. Presence of a key
// means processing of that event has started or completed; absence means it is
// safe to process. Implementations are expected to be a single round trip per
// call, not a compare-and-swap.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
}
