package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/taskify/backend/repository"
)

type reminderMarkRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewReminderMarkRepository creates a Redis-backed idempotency store for
// outbound reminder emails. Marks expire on their own so keys never pile up.
func NewReminderMarkRepository(client *redislib.Client, ttl time.Duration) repository.ReminderMarkRepository {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &reminderMarkRepository{
		client: client,
		prefix: "reminder:",
		ttl:    ttl,
	}
}

func (r *reminderMarkRepository) Claim(ctx context.Context, taskID string, day time.Time, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.client.SetNX(ctx, r.key(taskID, day), 1, ttl).Result()
}

func (r *reminderMarkRepository) Release(ctx context.Context, taskID string, day time.Time) error {
	return r.client.Del(ctx, r.key(taskID, day)).Err()
}

func (r *reminderMarkRepository) key(taskID string, day time.Time) string {
	return fmt.Sprintf("%s%s:%s", r.prefix, taskID, day.Format("2006-01-02"))
}
