package model

import (
	"time"

	"bluegenie-core/internal/domain"
)

// QuotaPolicy bounds free and premium generation allowances. Values are
// injected from configuration; DefaultQuotaPolicy mirrors production pricing.
type QuotaPolicy struct {
	FreeSongs             int
	PremiumSongsPerPeriod int
	PeriodDays            int
	PremiumPriceCents     int
	OverageCostCents      int
}

func DefaultQuotaPolicy() QuotaPolicy {
	return QuotaPolicy{
		FreeSongs:             5,
		PremiumSongsPerPeriod: 50,
		PeriodDays:            30,
		PremiumPriceCents:     500,
		OverageCostCents:      6,
	}
}

// UserProfile mirrors the remote user_profiles record. The remote copy is
// the source of truth; in-memory copies are a cache refreshed by reload.
type UserProfile struct {
	ID                    string
	Email                 string
	MessageCount          int
	SongCount             int
	SongsThisPeriod       int
	IsPremium             bool
	SubscriptionStartDate *time.Time
	PeriodStartDate       *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func NewUserProfile(id, email string) (*UserProfile, error) {
	if id == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &UserProfile{
		ID:        id,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// periodStart picks the active period anchor; a premium profile without one
// is treated as freshly activated (no renewal due yet).
func (p *UserProfile) periodStart() *time.Time {
	if p.PeriodStartDate != nil {
		return p.PeriodStartDate
	}
	return p.SubscriptionStartDate
}

// NeedsRenewal reports whether a premium period has lapsed: the configured
// number of days elapsed since the period start, or the period allowance used.
func (p *UserProfile) NeedsRenewal(policy QuotaPolicy, now time.Time) bool {
	if !p.IsPremium {
		return false
	}
	start := p.periodStart()
	if start == nil {
		return false
	}
	days := int(now.Sub(*start).Hours() / 24)
	return days >= policy.PeriodDays || p.SongsThisPeriod >= policy.PremiumSongsPerPeriod
}

// UsageCounter is the locally mirrored generation accounting for one user.
// It is refreshed from the remote profile on every entitlement reload and is
// never authoritative over the remote copy.
type UsageCounter struct {
	SongCount       int
	SongsThisPeriod int
	IsPremium       bool
	PeriodStart     *time.Time
}

func CounterFromProfile(p *UserProfile) UsageCounter {
	return UsageCounter{
		SongCount:       p.SongCount,
		SongsThisPeriod: p.SongsThisPeriod,
		IsPremium:       p.IsPremium,
		PeriodStart:     p.periodStart(),
	}
}

// CanGenerate is true while free-tier allowance remains, or for premium
// users inside their period caps.
func (c UsageCounter) CanGenerate(policy QuotaPolicy, now time.Time) bool {
	if !c.IsPremium {
		return c.SongCount < policy.FreeSongs
	}
	if c.SongsThisPeriod >= policy.PremiumSongsPerPeriod {
		return false
	}
	if c.PeriodStart != nil {
		days := int(now.Sub(*c.PeriodStart).Hours() / 24)
		if days >= policy.PeriodDays {
			return false
		}
	}
	return true
}

// RecordGeneration increments both counters. Callers must invoke it exactly
// once per confirmed successful generation, never speculatively.
func (c *UsageCounter) RecordGeneration() {
	c.SongCount++
	c.SongsThisPeriod++
}

func (c UsageCounter) InFreeTier(policy QuotaPolicy) bool {
	return !c.IsPremium && c.SongCount < policy.FreeSongs
}

// NextGenerationCost returns the cost in cents of the next generation:
// zero inside the free tier or a premium period, fixed overage otherwise.
func (c UsageCounter) NextGenerationCost(policy QuotaPolicy) int {
	if c.IsPremium || c.SongCount < policy.FreeSongs {
		return 0
	}
	return policy.OverageCostCents
}

// EntitlementState labels where a user sits in the upgrade lifecycle.
type EntitlementState string

const (
	EntitlementAnonymous         EntitlementState = "anonymous"
	EntitlementFreeTier          EntitlementState = "free_tier"
	EntitlementFreeTierExhausted EntitlementState = "free_tier_exhausted"
	EntitlementPremiumActive     EntitlementState = "premium_active"
	EntitlementPremiumRenewal    EntitlementState = "premium_needs_renewal"
)

// UserSubscription is the read-only view merging the remote profile with the
// derived renewal decision. It has no lifecycle of its own and is recomputed
// on every profile reload.
type UserSubscription struct {
	UserID                string
	IsPremium             bool
	MessageCount          int
	SongCount             int
	SongsThisPeriod       int
	SubscriptionStartDate *time.Time
	PeriodStartDate       *time.Time
	NeedsRenewal          bool
}

func BuildSubscription(p *UserProfile, policy QuotaPolicy, now time.Time) UserSubscription {
	return UserSubscription{
		UserID:                p.ID,
		IsPremium:             p.IsPremium,
		MessageCount:          p.MessageCount,
		SongCount:             p.SongCount,
		SongsThisPeriod:       p.SongsThisPeriod,
		SubscriptionStartDate: p.SubscriptionStartDate,
		PeriodStartDate:       p.PeriodStartDate,
		NeedsRenewal:          p.NeedsRenewal(policy, now),
	}
}

// Counter rebuilds the usage counter carried by this view.
func (s UserSubscription) Counter() UsageCounter {
	start := s.PeriodStartDate
	if start == nil {
		start = s.SubscriptionStartDate
	}
	return UsageCounter{
		SongCount:       s.SongCount,
		SongsThisPeriod: s.SongsThisPeriod,
		IsPremium:       s.IsPremium,
		PeriodStart:     start,
	}
}

// State derives the entitlement lifecycle label for this view. Both the
// exhausted and needs-renewal states route callers to the upgrade prompt.
func (s UserSubscription) State(policy QuotaPolicy) EntitlementState {
	switch {
	case s.UserID == "":
		return EntitlementAnonymous
	case s.IsPremium && s.NeedsRenewal:
		return EntitlementPremiumRenewal
	case s.IsPremium:
		return EntitlementPremiumActive
	case s.SongCount >= policy.FreeSongs:
		return EntitlementFreeTierExhausted
	default:
		return EntitlementFreeTier
	}
}
