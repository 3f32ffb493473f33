package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bluegenie-core/internal/domain"
	"bluegenie-core/internal/domain/model"
	"bluegenie-core/internal/domain/ports/repository"
	"bluegenie-core/internal/infra/metrics"
)

// SubscriptionCache holds the last merged entitlement view per user. The
// redis implementation lives in infra; tests use an in-memory fake.
type SubscriptionCache interface {
	Store(ctx context.Context, sub *model.UserSubscription) error
	Get(ctx context.Context, userID string) (*model.UserSubscription, error)
	Delete(ctx context.Context, userID string) error
}

// EntitlementUseCase resolves what a user is currently allowed to do. The
// remote profile is authoritative; Reload merges it into a subscription view.
type EntitlementUseCase interface {
	// Reload fetches (or creates) the remote profile, replays any pending
	// generation intents, and returns the merged subscription view. On a
	// transport failure it serves the last cached view instead of degrading
	// the user to anonymous.
	Reload(ctx context.Context, userID, email string) (*model.UserSubscription, error)

	// ActivatePremium flips the profile to premium and opens a fresh period.
	// Only the verified payment webhook calls this.
	ActivatePremium(ctx context.Context, userID string) error

	// Renew rolls a lapsed premium period over: period counter reset, period
	// start re-anchored.
	Renew(ctx context.Context, userID string) error

	// RenewDue renews every premium profile whose period started at or
	// before the cutoff. Returns how many were rolled over.
	RenewDue(ctx context.Context, cutoff time.Time) (int, error)

	// CheckRenewal applies the renewal rule to a profile snapshot without
	// touching any store.
	CheckRenewal(p *model.UserProfile, now time.Time) bool
}

type entitlementUseCase struct {
	profiles repository.ProfileRepository
	intents  repository.IntentLog
	cache    SubscriptionCache
	policy   model.QuotaPolicy
	logger   zerolog.Logger
}

var _ EntitlementUseCase = (*entitlementUseCase)(nil)

func NewEntitlementUseCase(
	profiles repository.ProfileRepository,
	intents repository.IntentLog,
	cache SubscriptionCache,
	policy model.QuotaPolicy,
	logger *zerolog.Logger,
) *entitlementUseCase {
	return &entitlementUseCase{
		profiles: profiles,
		intents:  intents,
		cache:    cache,
		policy:   policy,
		logger:   logger.With().Str("component", "entitlement_uc").Logger(),
	}
}

func (uc *entitlementUseCase) Reload(ctx context.Context, userID, email string) (*model.UserSubscription, error) {
	if userID == "" {
		return nil, domain.ErrNotSignedIn
	}

	profile, err := uc.profiles.GetOrCreate(ctx, repository.NoTX, userID, email)
	if err != nil {
		return uc.serveCached(ctx, userID, err)
	}

	replayed, err := uc.replayPending(ctx, userID)
	if err != nil {
		uc.logger.Warn().Err(err).Str("user_id", userID).Msg("intent replay incomplete")
	}
	if replayed > 0 {
		profile, err = uc.profiles.FindByID(ctx, repository.NoTX, userID)
		if err != nil {
			return uc.serveCached(ctx, userID, err)
		}
	}

	sub := model.BuildSubscription(profile, uc.policy, time.Now())
	if err := uc.cache.Store(ctx, &sub); err != nil {
		uc.logger.Warn().Err(err).Str("user_id", userID).Msg("subscription cache store failed")
	}
	return &sub, nil
}

// serveCached falls back to the last merged view after a remote failure, so
// a flaky connection never strips entitlement the user already paid for.
func (uc *entitlementUseCase) serveCached(ctx context.Context, userID string, cause error) (*model.UserSubscription, error) {
	cached, err := uc.cache.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: reload profile: %v", domain.ErrNetwork, cause)
	}
	uc.logger.Warn().Err(cause).Str("user_id", userID).Msg("profile reload failed, serving cached entitlement")
	return cached, nil
}

// replayPending re-applies remote counter increments whose ack never landed.
// A failure mid-replay leaves the rest pending for the next reload.
func (uc *entitlementUseCase) replayPending(ctx context.Context, userID string) (int, error) {
	pending, err := uc.intents.Pending(ctx, userID)
	if err != nil {
		return 0, err
	}
	replayed := 0
	for _, in := range pending {
		if err := uc.profiles.IncrementSongCount(ctx, repository.NoTX, userID); err != nil {
			return replayed, fmt.Errorf("replay intent %s: %w", in.ID, err)
		}
		if err := uc.intents.Ack(ctx, in.ID); err != nil {
			return replayed, fmt.Errorf("ack intent %s: %w", in.ID, err)
		}
		metrics.IncIntentReplay()
		replayed++
	}
	return replayed, nil
}

func (uc *entitlementUseCase) ActivatePremium(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.profiles.ActivatePremium(ctx, repository.NoTX, userID, time.Now()); err != nil {
		return err
	}
	if err := uc.cache.Delete(ctx, userID); err != nil {
		uc.logger.Warn().Err(err).Str("user_id", userID).Msg("stale subscription cache not invalidated")
	}
	uc.logger.Info().Str("user_id", userID).Msg("premium activated")
	return nil
}

func (uc *entitlementUseCase) Renew(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.profiles.RenewPeriod(ctx, repository.NoTX, userID, time.Now()); err != nil {
		return err
	}
	if err := uc.cache.Delete(ctx, userID); err != nil {
		uc.logger.Warn().Err(err).Str("user_id", userID).Msg("stale subscription cache not invalidated")
	}
	return nil
}

func (uc *entitlementUseCase) CheckRenewal(p *model.UserProfile, now time.Time) bool {
	return p.NeedsRenewal(uc.policy, now)
}

func (uc *entitlementUseCase) RenewDue(ctx context.Context, cutoff time.Time) (int, error) {
	due, err := uc.profiles.FindPremiumDueForRenewal(ctx, repository.NoTX, cutoff)
	if err != nil {
		return 0, err
	}
	renewed := 0
	for _, p := range due {
		if err := uc.Renew(ctx, p.ID); err != nil {
			uc.logger.Error().Err(err).Str("user_id", p.ID).Msg("period renewal failed")
			continue
		}
		renewed++
	}
	return renewed, nil
}
