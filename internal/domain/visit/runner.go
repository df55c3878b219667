package visit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTick is the interval at which the current visit is recomputed.
const DefaultTick = 30 * time.Second

// Runner drives Service.Tick from a recurring ticker plus a single-shot timer
// set at the cooldown deadline.
type Runner struct {
	svc    *Service
	every  time.Duration
	logger zerolog.Logger
}

func NewRunner(svc *Service, every time.Duration, logger zerolog.Logger) *Runner {
	if every <= 0 {
		every = DefaultTick
	}
	return &Runner{svc: svc, every: every, logger: logger.With().Str("component", "visit-runner").Logger()}
}

// Run blocks until ctx is cancelled. Both timers are stopped on return.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()

	var deadline *time.Timer
	stop := func() {
		if deadline != nil {
			deadline.Stop()
			deadline = nil
		}
	}
	defer stop()

	arm := func() {
		stop()
		at, ok := r.svc.NextDeadline()
		if !ok {
			return
		}
		wait := at.Sub(r.svc.Now())
		if wait <= 0 {
			// Overdue deadlines are picked up by the ticker.
			return
		}
		deadline = time.NewTimer(wait)
	}
	timerC := func() <-chan time.Time {
		if deadline == nil {
			return nil
		}
		return deadline.C
	}

	r.logger.Info().Dur("interval", r.every).Msg("schedule runner started")
	r.svc.Tick(ctx)
	arm()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("schedule runner stopped")
			return
		case <-ticker.C:
			r.svc.Tick(ctx)
		case <-timerC():
			deadline = nil
			r.svc.Tick(ctx)
			arm()
		case <-r.svc.Wake():
			arm()
		}
	}
}
