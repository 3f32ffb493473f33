package repository

import (
	"context"
	"time"

	"bluegenie-core/internal/domain/model"
)

// ProfileRepository owns the remote user_profiles record. Remote values of
// is_premium and the period counters win on any conflict with local state.
type ProfileRepository interface {
	// GetOrCreate fetches the profile for userID, creating a zero-counter row
	// exactly once (keyed by userID) when absent.
	GetOrCreate(ctx context.Context, tx Tx, userID, email string) (*model.UserProfile, error)
	FindByID(ctx context.Context, tx Tx, userID string) (*model.UserProfile, error)
	Save(ctx context.Context, tx Tx, p *model.UserProfile) error

	// IncrementSongCount bumps both the lifetime and period counters by one.
	IncrementSongCount(ctx context.Context, tx Tx, userID string) error
	IncrementMessageCount(ctx context.Context, tx Tx, userID string) error

	// ActivatePremium sets the premium flag and opens a fresh period.
	ActivatePremium(ctx context.Context, tx Tx, userID string, at time.Time) error
	// RenewPeriod resets songs_this_period and re-anchors period_start_date.
	RenewPeriod(ctx context.Context, tx Tx, userID string, at time.Time) error

	// FindPremiumDueForRenewal lists premium profiles whose period started at
	// or before the cutoff (used by the renewal worker).
	FindPremiumDueForRenewal(ctx context.Context, tx Tx, cutoff time.Time) ([]*model.UserProfile, error)
}
