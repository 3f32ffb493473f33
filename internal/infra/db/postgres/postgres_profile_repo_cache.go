package postgres

import (
	"context"
	"encoding/json"
	"time"

	"bluegenie-core/internal/domain/model"
	"bluegenie-core/internal/domain/ports/repository"
	"bluegenie-core/internal/infra/metrics"
	red "bluegenie-core/internal/infra/redis"
)

var _ repository.ProfileRepository = (*profileRepoCacheDecorator)(nil)

// profileRepoCacheDecorator fronts the profile repo with redis. The remote
// row stays authoritative: every accounting write invalidates before it runs.
type profileRepoCacheDecorator struct {
	inner repository.ProfileRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewProfileRepoCacheDecorator(inner repository.ProfileRepository, cache red.RedisClient, ttl time.Duration) repository.ProfileRepository {
	return &profileRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func profileKey(id string) string { return "profile:id:" + id }

func (d *profileRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, userID string) (*model.UserProfile, error) {
	if val, err := d.cache.Get(ctx, profileKey(userID)); err == nil {
		var p model.UserProfile
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("profile", "hit")
			return &p, nil
		}
	}
	metrics.IncCacheRequest("profile", "miss")
	p, err := d.inner.FindByID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	d.warm(ctx, p)
	return p, nil
}

// GetOrCreate always goes to the store (it must observe a concurrent insert)
// and only warms the cache with the row it got back.
func (d *profileRepoCacheDecorator) GetOrCreate(ctx context.Context, tx repository.Tx, userID, email string) (*model.UserProfile, error) {
	p, err := d.inner.GetOrCreate(ctx, tx, userID, email)
	if err != nil {
		return nil, err
	}
	d.warm(ctx, p)
	return p, nil
}

func (d *profileRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.UserProfile) error {
	_ = d.cache.Del(ctx, profileKey(p.ID))
	return d.inner.Save(ctx, tx, p)
}

func (d *profileRepoCacheDecorator) IncrementSongCount(ctx context.Context, tx repository.Tx, userID string) error {
	_ = d.cache.Del(ctx, profileKey(userID))
	return d.inner.IncrementSongCount(ctx, tx, userID)
}

func (d *profileRepoCacheDecorator) IncrementMessageCount(ctx context.Context, tx repository.Tx, userID string) error {
	_ = d.cache.Del(ctx, profileKey(userID))
	return d.inner.IncrementMessageCount(ctx, tx, userID)
}

func (d *profileRepoCacheDecorator) ActivatePremium(ctx context.Context, tx repository.Tx, userID string, at time.Time) error {
	_ = d.cache.Del(ctx, profileKey(userID))
	return d.inner.ActivatePremium(ctx, tx, userID, at)
}

func (d *profileRepoCacheDecorator) RenewPeriod(ctx context.Context, tx repository.Tx, userID string, at time.Time) error {
	_ = d.cache.Del(ctx, profileKey(userID))
	return d.inner.RenewPeriod(ctx, tx, userID, at)
}

// Pass-through: the renewal worker scans the whole table anyway.
func (d *profileRepoCacheDecorator) FindPremiumDueForRenewal(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.UserProfile, error) {
	return d.inner.FindPremiumDueForRenewal(ctx, tx, cutoff)
}

func (d *profileRepoCacheDecorator) warm(ctx context.Context, p *model.UserProfile) {
	if p == nil {
		return
	}
	if bytes, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, profileKey(p.ID), bytes, d.ttl)
	}
}
