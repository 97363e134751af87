package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pvmanagement/auth-system/internal/core/ports"
)

const defaultInterval = time.Hour

// Sweeper periodically deletes refresh-token rows whose expiry has passed.
// Rotation leaves revoked rows behind as a short-lived audit trail; this is
// the only place they are garbage collected.
type Sweeper struct {
	repo     ports.RefreshTokenRepository
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(repo ports.RefreshTokenRepository, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{repo: repo, interval: interval, log: log}
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.repo.DeleteExpiredBefore(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("expired refresh token sweep failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("expired refresh tokens swept")
	}
}
