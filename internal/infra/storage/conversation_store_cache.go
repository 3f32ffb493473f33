package storage

import (
	"context"
	"encoding/json"
	"time"

	"bluegenie-core/internal/domain/model"
	"bluegenie-core/internal/domain/ports/repository"
	"bluegenie-core/internal/infra/metrics"
	red "bluegenie-core/internal/infra/redis"
)

var _ repository.ConversationStore = (*conversationStoreCacheDecorator)(nil)

// conversationStoreCacheDecorator mirrors hot logs in redis so reads skip
// the disk. The file store stays authoritative: every mutating call
// invalidates before it writes through.
type conversationStoreCacheDecorator struct {
	inner repository.ConversationStore
	cache red.RedisClient
	ttl   time.Duration
}

func NewConversationStoreCacheDecorator(inner repository.ConversationStore, cache red.RedisClient, ttl time.Duration) repository.ConversationStore {
	return &conversationStoreCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func conversationKey(personalityID string) string { return "conversation:" + personalityID }

func (d *conversationStoreCacheDecorator) Load(ctx context.Context, personalityID string) ([]model.Message, error) {
	if val, err := d.cache.Get(ctx, conversationKey(personalityID)); err == nil {
		var msgs []model.Message
		if json.Unmarshal([]byte(val), &msgs) == nil {
			metrics.IncCacheRequest("conversation", "hit")
			// An active conversation stays warm for another window.
			_ = d.cache.Expire(ctx, conversationKey(personalityID), d.ttl)
			return msgs, nil
		}
	}
	metrics.IncCacheRequest("conversation", "miss")
	msgs, err := d.inner.Load(ctx, personalityID)
	if err != nil {
		return nil, err
	}
	d.warm(ctx, personalityID, msgs)
	return msgs, nil
}

func (d *conversationStoreCacheDecorator) Append(ctx context.Context, personalityID string, msg model.Message) error {
	_ = d.cache.Del(ctx, conversationKey(personalityID))
	return d.inner.Append(ctx, personalityID, msg)
}

func (d *conversationStoreCacheDecorator) Clear(ctx context.Context, personalityID string) error {
	_ = d.cache.Del(ctx, conversationKey(personalityID))
	return d.inner.Clear(ctx, personalityID)
}

func (d *conversationStoreCacheDecorator) ClearAll(ctx context.Context) error {
	keys := make([]string, 0, len(model.Personalities()))
	for _, p := range model.Personalities() {
		keys = append(keys, conversationKey(p.ID))
	}
	_ = d.cache.Del(ctx, keys...)
	return d.inner.ClearAll(ctx)
}

// Pass-through: the idle threshold lives with the file store.
func (d *conversationStoreCacheDecorator) ShouldAutoReset(ctx context.Context, personalityID string) (bool, error) {
	return d.inner.ShouldAutoReset(ctx, personalityID)
}

func (d *conversationStoreCacheDecorator) ToggleBookmark(ctx context.Context, personalityID, messageID string) error {
	_ = d.cache.Del(ctx, conversationKey(personalityID))
	return d.inner.ToggleBookmark(ctx, personalityID, messageID)
}

func (d *conversationStoreCacheDecorator) warm(ctx context.Context, personalityID string, msgs []model.Message) {
	bytes, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	_ = d.cache.Set(ctx, conversationKey(personalityID), bytes, d.ttl)
}
