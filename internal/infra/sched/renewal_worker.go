package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"bluegenie-core/internal/usecase"
)

// RenewalWorker rolls lapsed premium periods over on a fixed interval. A
// period lapses when its start date is at least periodDays behind now.
type RenewalWorker struct {
	interval   time.Duration
	periodDays int
	ents       usecase.EntitlementUseCase
	log        zerolog.Logger
}

func NewRenewalWorker(interval time.Duration, periodDays int, ents usecase.EntitlementUseCase, logger *zerolog.Logger) *RenewalWorker {
	return &RenewalWorker{
		interval:   interval,
		periodDays: periodDays,
		ents:       ents,
		log:        logger.With().Str("component", "RenewalWorker").Logger(),
	}
}

func (w *RenewalWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting renewal worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once on startup, then on every tick.
	w.runCheck(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping renewal worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCheck(ctx)
		}
	}
}

func (w *RenewalWorker) runCheck(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -w.periodDays)
	n, err := w.ents.RenewDue(ctx, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("renewal sweep failed")
		return
	}
	if n > 0 {
		w.log.Info().Int("count", n).Msg("premium periods rolled over")
	}
}
