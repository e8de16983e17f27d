package redis

import (
	"context"
	"time"
)

// DailyLock guards a daily batch job against concurrent execution across
// scheduler replicas, per spec.md §5 ("daily idempotence... additionally
// guarded by a Redis lock"). It is a thin SetNX wrapper; the ledger
// store's own idempotent filters (last_recommended_on, last_emailed_on)
// remain the correctness guarantee -- this lock is purely an optimisation
// to avoid duplicate work, not a substitute for it.
type DailyLock struct {
	client *Client
	ttl    time.Duration
}

// NewDailyLock creates a lock helper backed by client, holding acquired
// locks for ttl before they expire on their own.
func NewDailyLock(client *Client, ttl time.Duration) *DailyLock {
	return &DailyLock{client: client, ttl: ttl}
}

// Acquire attempts to claim key for today's run, returning true if this
// caller won the race.
func (l *DailyLock) Acquire(ctx context.Context, key string, now time.Time) (bool, error) {
	fullKey := key + ":" + now.Format("2006-01-02")
	return l.client.SetNX(ctx, fullKey, "1", l.ttl).Result()
}
