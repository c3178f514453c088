package reservation

import "context"

// SlotEngine exposes the shared-store primitives for one bookable (date, hour)
// unit: a confirmed-booking counter and a time-bounded ownership lock. The
// store's conditional set is the only serialization point across sessions.
type SlotEngine interface {
	// Count returns the confirmed-booking count for the slot, 0 if absent.
	Count(ctx context.Context, date, hour string) (int64, error)

	// Increment atomically bumps the confirmed-booking count and returns it.
	Increment(ctx context.Context, date, hour string) (int64, error)

	// AcquireLock claims the slot for sessionID. A holder calling again before
	// expiry succeeds and refreshes the TTL; it never gains a second hold.
	AcquireLock(ctx context.Context, date, hour, sessionID string) (bool, error)

	// ReleaseLock drops the lock only when sessionID is the current holder.
	ReleaseLock(ctx context.Context, date, hour, sessionID string) error
}
