package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stagepass/internal/shared/config"
	"stagepass/pkg/clock"
)

type countingSweeps struct {
	holds    atomic.Int32
	bookings atomic.Int32
	events   atomic.Int32
	refunds  atomic.Int32

	holdCutoff atomic.Value
}

func (c *countingSweeps) ReleaseExpiredHolds(ctx context.Context, cutoff time.Time) (int, error) {
	c.holds.Add(1)
	c.holdCutoff.Store(cutoff)
	return 1, nil
}

func (c *countingSweeps) ExpirePendingBookingsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	c.bookings.Add(1)
	return 0, nil
}

func (c *countingSweeps) RecomputeEventStatuses(ctx context.Context) (int, error) {
	c.events.Add(1)
	return 0, nil
}

func (c *countingSweeps) RetryStuckRefunds(ctx context.Context) (int, error) {
	c.refunds.Add(1)
	return 0, nil
}

func TestSchedulerRunsAllSweeps(t *testing.T) {
	sweeps := &countingSweeps{}
	clk := &clock.Fixed{Current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cfg := config.BookingConfig{
		HoldTTL:                  15 * time.Minute,
		HoldSweepInterval:        10 * time.Millisecond,
		BookingSweepInterval:     10 * time.Millisecond,
		EventStatusSweepInterval: 10 * time.Millisecond,
		RefundRetryInterval:      10 * time.Millisecond,
	}

	s := New(sweeps, sweeps, sweeps, sweeps, cfg, clk)
	s.Start(context.Background())

	assert.Eventually(t, func() bool {
		return sweeps.holds.Load() > 0 &&
			sweeps.bookings.Load() > 0 &&
			sweeps.events.Load() > 0 &&
			sweeps.refunds.Load() > 0
	}, 2*time.Second, 5*time.Millisecond)

	s.Stop()

	// the hold sweep's cutoff trails the clock by exactly the TTL
	cutoff, ok := sweeps.holdCutoff.Load().(time.Time)
	assert.True(t, ok)
	assert.Equal(t, clk.Current.Add(-cfg.HoldTTL), cutoff)
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	sweeps := &countingSweeps{}
	cfg := config.BookingConfig{
		HoldTTL:                  15 * time.Minute,
		HoldSweepInterval:        time.Hour,
		BookingSweepInterval:     time.Hour,
		EventStatusSweepInterval: time.Hour,
		RefundRetryInterval:      time.Hour,
	}

	s := New(sweeps, sweeps, sweeps, sweeps, cfg, clock.System())
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}
