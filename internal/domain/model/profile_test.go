package model

import (
	"testing"
	"time"
)

func daysAgo(n int) *time.Time {
	t := time.Now().Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func TestUsageCounter_CanGenerate(t *testing.T) {
	policy := DefaultQuotaPolicy()
	now := time.Now()

	tests := []struct {
		name    string
		counter UsageCounter
		want    bool
	}{
		{"free with allowance", UsageCounter{SongCount: 0}, true},
		{"free at fourth song", UsageCounter{SongCount: 4}, true},
		{"free exhausted", UsageCounter{SongCount: 5}, false},
		{"free over limit", UsageCounter{SongCount: 7}, false},
		{"premium fresh period", UsageCounter{IsPremium: true, SongsThisPeriod: 0, PeriodStart: daysAgo(1)}, true},
		{"premium at period cap", UsageCounter{IsPremium: true, SongsThisPeriod: 50, PeriodStart: daysAgo(1)}, false},
		{"premium period lapsed", UsageCounter{IsPremium: true, SongsThisPeriod: 3, PeriodStart: daysAgo(31)}, false},
		{"premium no anchor yet", UsageCounter{IsPremium: true, SongsThisPeriod: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.counter.CanGenerate(policy, now); got != tt.want {
				t.Fatalf("CanGenerate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsageCounter_RecordGeneration(t *testing.T) {
	c := UsageCounter{SongCount: 2, SongsThisPeriod: 1}
	c.RecordGeneration()
	if c.SongCount != 3 || c.SongsThisPeriod != 2 {
		t.Fatalf("both counters must advance together: %+v", c)
	}
}

func TestUsageCounter_NextGenerationCost(t *testing.T) {
	policy := DefaultQuotaPolicy()

	tests := []struct {
		name    string
		counter UsageCounter
		want    int
	}{
		{"free tier", UsageCounter{SongCount: 2}, 0},
		{"premium", UsageCounter{IsPremium: true, SongCount: 80}, 0},
		{"free exhausted pays overage", UsageCounter{SongCount: 5}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.counter.NextGenerationCost(policy); got != tt.want {
				t.Fatalf("NextGenerationCost = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUserProfile_NeedsRenewal(t *testing.T) {
	policy := DefaultQuotaPolicy()
	now := time.Now()

	tests := []struct {
		name    string
		profile UserProfile
		want    bool
	}{
		{"free never renews", UserProfile{SongsThisPeriod: 99}, false},
		{"premium mid-period", UserProfile{IsPremium: true, PeriodStartDate: daysAgo(10)}, false},
		{"premium 30 days", UserProfile{IsPremium: true, PeriodStartDate: daysAgo(30)}, true},
		{"premium 31 days", UserProfile{IsPremium: true, PeriodStartDate: daysAgo(31)}, true},
		{"premium quota used", UserProfile{IsPremium: true, PeriodStartDate: daysAgo(5), SongsThisPeriod: 50}, true},
		{"premium without anchor", UserProfile{IsPremium: true}, false},
		{"falls back to subscription start", UserProfile{IsPremium: true, SubscriptionStartDate: daysAgo(31)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.NeedsRenewal(policy, now); got != tt.want {
				t.Fatalf("NeedsRenewal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserSubscription_State(t *testing.T) {
	policy := DefaultQuotaPolicy()

	tests := []struct {
		name string
		sub  UserSubscription
		want EntitlementState
	}{
		{"anonymous", UserSubscription{}, EntitlementAnonymous},
		{"free tier", UserSubscription{UserID: "u1", SongCount: 2}, EntitlementFreeTier},
		{"free exhausted", UserSubscription{UserID: "u1", SongCount: 5}, EntitlementFreeTierExhausted},
		{"premium active", UserSubscription{UserID: "u1", IsPremium: true}, EntitlementPremiumActive},
		{"premium renewal", UserSubscription{UserID: "u1", IsPremium: true, NeedsRenewal: true}, EntitlementPremiumRenewal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.State(policy); got != tt.want {
				t.Fatalf("State = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildSubscription(t *testing.T) {
	p, err := NewUserProfile("u1", "u1@example.com")
	if err != nil {
		t.Fatalf("NewUserProfile: %v", err)
	}
	p.IsPremium = true
	p.PeriodStartDate = daysAgo(31)
	p.SongCount = 12
	p.SongsThisPeriod = 7

	sub := BuildSubscription(p, DefaultQuotaPolicy(), time.Now())
	if sub.UserID != "u1" || sub.SongCount != 12 || sub.SongsThisPeriod != 7 {
		t.Fatalf("view mismatch: %+v", sub)
	}
	if !sub.NeedsRenewal {
		t.Fatal("renewal flag lost in the merged view")
	}

	c := sub.Counter()
	if c.SongCount != 12 || !c.IsPremium || c.PeriodStart == nil {
		t.Fatalf("counter mismatch: %+v", c)
	}
}
