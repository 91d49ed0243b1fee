package station

import (
	"context"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/passlineclub/passline/internal/enums/station"
)

const (
	// ticketRetention is how long a closed ticket stays around before the
	// sweep may touch it.
	ticketRetention = 24 * time.Hour

	defaultSweepInterval = time.Hour
)

// Sweeper periodically deletes kitchen tickets that have been served for
// longer than the retention window. Bar tickets are kept as served for
// end-of-day tallies. Only tickets already served and past the cutoff are
// touched, so the sweep cannot conflict with a live transition.
type Sweeper struct {
	tickets  TicketRepository
	interval time.Duration
	logger   apt.Logger
	done     chan struct{}
}

func NewSweeper(tickets TicketRepository, config *apt.Config, logger apt.Logger) *Sweeper {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	interval := defaultSweepInterval
	if config != nil {
		if raw, _ := config.GetString("retention.sweep.interval"); raw != "" {
			if d, err := time.ParseDuration(raw); err == nil && d > 0 {
				interval = d
			}
		}
	}

	return &Sweeper{
		tickets:  tickets,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	go s.run(ctx)
	return nil
}

func (s *Sweeper) Stop(ctx context.Context) error {
	close(s.done)
	return nil
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep performs one pass. Idempotent; safe to call at any time.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-ticketRetention)

	deleted, err := s.tickets.DeleteServedBefore(ctx, station.Stations.Kitchen.Code(), cutoff)
	if err != nil {
		s.logger.Errorf("retention sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("retention sweep removed kitchen tickets", "count", deleted)
	}
}
