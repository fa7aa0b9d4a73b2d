package countdown

import (
	"context"
	"strconv"
	"time"
)

// DefaultPromoLead is how far ahead of the first view the deadline is pinned.
const DefaultPromoLead = 10 * 24 * time.Hour

// KV is the slice of preference storage the deadline pin needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// PinDeadline returns the deadline stored under key as Unix milliseconds. When
// nothing usable is stored it pins now+lead and tries to store it. Storage is
// best effort: failures fall back to the computed deadline.
func PinDeadline(ctx context.Context, store KV, key string, now time.Time, lead time.Duration) time.Time {
	fresh := now.Add(lead)
	if store == nil {
		return fresh
	}
	if v, err := store.Get(ctx, key); err == nil {
		if ms, perr := strconv.ParseInt(v, 10, 64); perr == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
	}
	_ = store.Set(ctx, key, strconv.FormatInt(fresh.UnixMilli(), 10))
	return fresh
}
