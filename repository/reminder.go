package repository

import (
	"context"
	"time"
)

// ReminderMarkRepository guards outbound reminder emails with an idempotency
// mark so a re-run inside the same window does not mail twice even when the
// sent flag write was lost.
type ReminderMarkRepository interface {
	// Claim records the mark and reports whether this caller won it.
	// Returns true exactly once per (task, day) until the TTL lapses.
	Claim(ctx context.Context, taskID string, day time.Time, ttl time.Duration) (bool, error)
	// Release drops a claimed mark so a failed send can be retried by a
	// later run.
	Release(ctx context.Context, taskID string, day time.Time) error
}
