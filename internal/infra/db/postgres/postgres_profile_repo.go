package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"bluegenie-core/internal/domain"
	"bluegenie-core/internal/domain/model"
	"bluegenie-core/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*PostgresProfileRepo)(nil)

// PostgresProfileRepo owns the user_profiles table, the remote source of
// truth for premium status and period counters.
type PostgresProfileRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileRepo(pool *pgxpool.Pool) *PostgresProfileRepo {
	return &PostgresProfileRepo{pool: pool}
}

const profileColumns = `
id, email, message_count, song_count, songs_this_period, is_premium,
subscription_start_date, period_start_date, created_at, updated_at`

func scanProfile(row pgx.Row) (*model.UserProfile, error) {
	var p model.UserProfile
	if err := row.Scan(
		&p.ID, &p.Email, &p.MessageCount, &p.SongCount, &p.SongsThisPeriod,
		&p.IsPremium, &p.SubscriptionStartDate, &p.PeriodStartDate,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetOrCreate relies on INSERT ... ON CONFLICT DO NOTHING for exactly-once
// creation keyed by user id; the follow-up select returns whichever row won.
func (r *PostgresProfileRepo) GetOrCreate(ctx context.Context, tx repository.Tx, userID, email string) (*model.UserProfile, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const ins = `
INSERT INTO user_profiles (id, email, created_at, updated_at)
VALUES ($1, $2, now(), now())
ON CONFLICT (id) DO NOTHING;`
	if _, err := ex.Exec(ctx, ins, userID, email); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return scanProfile(ex.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE id=$1;`, userID))
}

func (r *PostgresProfileRepo) FindByID(ctx context.Context, tx repository.Tx, userID string) (*model.UserProfile, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	return scanProfile(ex.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE id=$1;`, userID))
}

func (r *PostgresProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.UserProfile) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO user_profiles (
  id, email, message_count, song_count, songs_this_period, is_premium,
  subscription_start_date, period_start_date, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
ON CONFLICT (id) DO UPDATE SET
  email=$2, message_count=$3, song_count=$4, songs_this_period=$5,
  is_premium=$6, subscription_start_date=$7, period_start_date=$8, updated_at=now();`
	_, err = ex.Exec(ctx, q, p.ID, p.Email, p.MessageCount, p.SongCount,
		p.SongsThisPeriod, p.IsPremium, p.SubscriptionStartDate, p.PeriodStartDate, p.CreatedAt)
	return err
}

// IncrementSongCount bumps lifetime and period counters in one statement so
// the pair can never drift apart.
func (r *PostgresProfileRepo) IncrementSongCount(ctx context.Context, tx repository.Tx, userID string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `
UPDATE user_profiles
   SET song_count = song_count + 1,
       songs_this_period = songs_this_period + 1,
       updated_at = now()
 WHERE id=$1;`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepo) IncrementMessageCount(ctx context.Context, tx repository.Tx, userID string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `
UPDATE user_profiles SET message_count = message_count + 1, updated_at = now() WHERE id=$1;`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepo) ActivatePremium(ctx context.Context, tx repository.Tx, userID string, at time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `
UPDATE user_profiles
   SET is_premium = TRUE,
       subscription_start_date = $2,
       period_start_date = $2,
       songs_this_period = 0,
       updated_at = now()
 WHERE id=$1;`, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepo) RenewPeriod(ctx context.Context, tx repository.Tx, userID string, at time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `
UPDATE user_profiles
   SET period_start_date = $2,
       songs_this_period = 0,
       updated_at = now()
 WHERE id=$1 AND is_premium;`, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepo) FindPremiumDueForRenewal(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.UserProfile, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `
SELECT `+profileColumns+`
  FROM user_profiles
 WHERE is_premium
   AND COALESCE(period_start_date, subscription_start_date) <= $1;`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.UserProfile
	for rows.Next() {
		var p model.UserProfile
		if err := rows.Scan(
			&p.ID, &p.Email, &p.MessageCount, &p.SongCount, &p.SongsThisPeriod,
			&p.IsPremium, &p.SubscriptionStartDate, &p.PeriodStartDate,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
