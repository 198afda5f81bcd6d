package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NotificationRepository publishes booking notifications over Redis pub/sub.
type NotificationRepository struct {
	client *redis.Client
}

// NewNotificationRepository constructs the publisher. A nil client turns Publish into a no-op.
func NewNotificationRepository(client *redis.Client) *NotificationRepository {
	return &NotificationRepository{client: client}
}

// Publish sends payload to channel and returns the number of receiving subscribers.
func (r *NotificationRepository) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	receivers, err := r.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return receivers, nil
}
