package idempotency

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Gate provides at-most-once admission for inbound events, keyed by event ID.
// Per key the lifecycle is Unseen -> Processing -> Done, where Processing and
// Done both read as "already handled" from the outside: the record is written
// before any side-effecting work begins, left in place on success, and deleted
// on failure so the upstream redelivery can retry.
//
// The presence check and the write are two round trips, not an atomic
// compare-and-swap. Two deliveries of the same ID arriving in the same instant
// can both pass the check; the upstream processor does not double-deliver that
// fast in practice, so the guarantee is at-most-once per delivery wave, not
// linearizable exactly-once.
//
// A crash between MarkIfUnseen and CommitOrRollback leaves the event wedged as
// a false duplicate until the key is cleared by hand. Known limitation; the
// recovery policy (manual vs. timed expiry) is deliberately not decided here,
// so no TTL is applied.
type Gate struct {
	store  Store
	logger *logrus.Entry
}

// NewGate creates an event gate over the given store.
func NewGate(store Store, logger *logrus.Logger) *Gate {
	return &Gate{
		store:  store,
		logger: logger.WithField("component", "idempotency.gate"),
	}
}

// MarkIfUnseen admits the event for processing. It returns true when the
// caller should proceed and false when the event was already marked; a false
// return is a successful no-op outcome, not an error.
func (g *Gate) MarkIfUnseen(ctx context.Context, eventID string) (bool, error) {
	seen, err := g.store.Exists(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("idempotency check failed: %w", err)
	}
	if seen {
		return false, nil
	}
	if err := g.store.Set(ctx, eventID); err != nil {
		return false, fmt.Errorf("failed to mark event as processing: %w", err)
	}
	return true, nil
}

// CommitOrRollback finalizes the event record. A nil processing error leaves
// the marker in the store as a permanent dedupe record; a non-nil error
// deletes it so a future redelivery gets processed.
func (g *Gate) CommitOrRollback(ctx context.Context, eventID string, processingErr error) {
	if processingErr == nil {
		return
	}
	if err := g.store.Delete(ctx, eventID); err != nil {
		// The event stays marked and will read as a duplicate on redelivery.
		g.logger.WithError(err).WithField("event_id", eventID).
			Error("failed to roll back idempotency record")
	}
}
