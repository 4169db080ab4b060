package worker

import (
	"context"
	"time"

	"github.com/careprep/careprep-backend/internal/config"
	"github.com/careprep/careprep-backend/internal/service"
	"github.com/rs/zerolog"
)

// ReapBatchSize caps how many overdue sessions one sweep closes.
const ReapBatchSize = 100

// ReaperWorker force-submits in-progress sessions whose wall-clock age
// exceeds the exam budget plus a grace period. Abandoned sessions otherwise
// stay open forever, which is the documented default; the reaper is opt-in
// via REAPER_ENABLED.
type ReaperWorker struct {
	sessions *service.SessionService
	interval time.Duration
	log      zerolog.Logger
}

// NewReaperWorker creates a new ReaperWorker.
func NewReaperWorker(sessions *service.SessionService, cfg *config.Config, log zerolog.Logger) *ReaperWorker {
	return &ReaperWorker{
		sessions: sessions,
		interval: cfg.ReaperInterval,
		log:      log.With().Str("component", "reaper_worker").Logger(),
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *ReaperWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("ReaperWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return

		case <-ticker.C:
			closed, err := w.sessions.SweepOverdue(ctx, ReapBatchSize)
			if err != nil {
				if ctx.Err() == nil {
					w.log.Error().Err(err).Msg("Sweep failed")
				}
				continue
			}
			if closed > 0 {
				w.log.Info().Int("closed", closed).Msg("Swept overdue sessions")
			}
		}
	}
}
