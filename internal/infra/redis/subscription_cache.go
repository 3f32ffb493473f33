package redis

import (
	"context"
	"encoding/json"
	"time"

	"bluegenie-core/internal/domain/model"
)

// SubscriptionCache stores the last merged entitlement view per user. When a
// profile reload fails with a transport error, the resolver serves this view
// instead of clearing the user's entitlement.
type SubscriptionCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewSubscriptionCache(client RedisClient, ttl time.Duration) *SubscriptionCache {
	return &SubscriptionCache{client: client, ttl: ttl}
}

func (c *SubscriptionCache) Store(ctx context.Context, sub *model.UserSubscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "subscription:"+sub.UserID, data, c.ttl)
}

func (c *SubscriptionCache) Get(ctx context.Context, userID string) (*model.UserSubscription, error) {
	data, err := c.client.Get(ctx, "subscription:"+userID)
	if err != nil {
		return nil, err
	}
	var sub model.UserSubscription
	if err := json.Unmarshal([]byte(data), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *SubscriptionCache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, "subscription:"+userID)
}
