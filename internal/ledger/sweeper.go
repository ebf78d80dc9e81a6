package ledger

import (
	"context"
	"time"

	"eventixs/pkg/logger"
)

// ExpiryFunc is invoked after the sweeper expires a lapsed hold, so the
// owning booking can be cancelled without the ledger knowing about bookings.
type ExpiryFunc func(ctx context.Context, reservation *Reservation)

// SweeperConfig contains configuration for the reservation sweeper
type SweeperConfig struct {
	Interval  time.Duration
	BatchSize int
}

// DefaultSweeperConfig returns default sweeper configuration
func DefaultSweeperConfig() *SweeperConfig {
	return &SweeperConfig{
		Interval:  1 * time.Minute, // Check for lapsed holds every minute
		BatchSize: 100,             // Process 100 lapsed holds at a time
	}
}

// Sweeper periodically expires lapsed holds so abandoned checkouts cannot
// starve inventory indefinitely.
type Sweeper struct {
	ledger   Ledger
	repo     Repository
	config   *SweeperConfig
	onExpire ExpiryFunc
	log      *logger.Logger
	done     chan struct{}
}

// NewSweeper creates a new reservation sweeper
func NewSweeper(l Ledger, repo Repository, config *SweeperConfig, onExpire ExpiryFunc, log *logger.Logger) *Sweeper {
	if config == nil {
		config = DefaultSweeperConfig()
	}
	if log == nil {
		log = logger.GetDefault()
	}

	return &Sweeper{
		ledger:   l,
		repo:     repo,
		config:   config,
		onExpire: onExpire,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or the context ends.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
	s.log.Info("Reservation sweeper started", "interval", s.config.Interval.String())
}

// Stop stops the sweep loop
func (s *Sweeper) Stop() {
	close(s.done)
	s.log.Info("Reservation sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep expires one batch of lapsed holds.
func (s *Sweeper) sweep(ctx context.Context) {
	lapsed, err := s.repo.FindLapsed(ctx, time.Now(), s.config.BatchSize)
	if err != nil {
		s.log.ErrorWithContext(ctx, "failed to find lapsed reservations", err, nil)
		return
	}

	if len(lapsed) == 0 {
		return
	}

	expired := 0
	for i := range lapsed {
		reservation := lapsed[i]
		if err := s.ledger.Expire(ctx, reservation.ID); err != nil {
			s.log.ErrorWithContext(ctx, "failed to expire reservation", err, map[string]interface{}{
				"reservation_id": reservation.ID.String(),
			})
			continue
		}
		expired++

		if s.onExpire != nil {
			s.onExpire(ctx, &reservation)
		}
	}

	s.log.InfoWithContext(ctx, "expired lapsed reservations", map[string]interface{}{
		"count": expired,
	})
}
