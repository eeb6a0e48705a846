package scheduler

import (
	"context"
	"sync"
	"time"

	"stagepass/internal/shared/config"
	"stagepass/pkg/clock"
	"stagepass/pkg/logger"
)

// SeatSweeper releases expired seat holds.
type SeatSweeper interface {
	ReleaseExpiredHolds(ctx context.Context, cutoff time.Time) (int, error)
}

// BookingSweeper expires stale pending bookings.
type BookingSweeper interface {
	ExpirePendingBookingsBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// EventSweeper advances event lifecycle statuses.
type EventSweeper interface {
	RecomputeEventStatuses(ctx context.Context) (int, error)
}

// RefundRecoverer retries refunds that failed during a cancellation fan-out.
type RefundRecoverer interface {
	RetryStuckRefunds(ctx context.Context) (int, error)
}

// Scheduler runs the background reconciliation sweeps on fixed intervals.
type Scheduler struct {
	seats    SeatSweeper
	bookings BookingSweeper
	events   EventSweeper
	refunds  RefundRecoverer

	cfg   config.BookingConfig
	clock clock.Clock
	log   *logger.Logger

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func New(seats SeatSweeper, bookings BookingSweeper, events EventSweeper, refunds RefundRecoverer, cfg config.BookingConfig, clk clock.Clock) *Scheduler {
	return &Scheduler{
		seats:    seats,
		bookings: bookings,
		events:   events,
		refunds:  refunds,
		cfg:      cfg,
		clock:    clk,
		log:      logger.GetDefault(),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.run(ctx, "release_expired_holds", s.cfg.HoldSweepInterval, func(ctx context.Context) (int, error) {
		cutoff := s.clock.Now().Add(-s.cfg.HoldTTL)
		return s.seats.ReleaseExpiredHolds(ctx, cutoff)
	})
	s.run(ctx, "expire_pending_bookings", s.cfg.BookingSweepInterval, func(ctx context.Context) (int, error) {
		cutoff := s.clock.Now().Add(-s.cfg.HoldTTL)
		return s.bookings.ExpirePendingBookingsBefore(ctx, cutoff)
	})
	s.run(ctx, "recompute_event_statuses", s.cfg.EventStatusSweepInterval, s.events.RecomputeEventStatuses)
	s.run(ctx, "retry_stuck_refunds", s.cfg.RefundRetryInterval, s.refunds.RetryStuckRefunds)

	s.log.Info("scheduler started",
		"hold_sweep_interval", s.cfg.HoldSweepInterval,
		"booking_sweep_interval", s.cfg.BookingSweepInterval,
		"event_status_interval", s.cfg.EventStatusSweepInterval,
		"refund_retry_interval", s.cfg.RefundRetryInterval,
	)
}

func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, name string, interval time.Duration, sweep func(context.Context) (int, error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				affected, err := sweep(ctx)
				s.log.LogSweepRun(ctx, name, affected, err)
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}
