package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulab/assess-backend/internal/service"
)

// CacheWarmWorker periodically rebuilds every exam's Redis payload and
// answer-key entries so the fast lane survives Redis restarts and evictions
// without waiting for a cold-path request.
type CacheWarmWorker struct {
	examSvc  *service.ExamService
	interval time.Duration
	log      zerolog.Logger
}

// NewCacheWarmWorker creates a CacheWarmWorker. A zero interval disables it.
func NewCacheWarmWorker(examSvc *service.ExamService, interval time.Duration, log zerolog.Logger) *CacheWarmWorker {
	return &CacheWarmWorker{
		examSvc:  examSvc,
		interval: interval,
		log:      log.With().Str("component", "cachewarm_worker").Logger(),
	}
}

// Start runs the re-warm loop until ctx is cancelled.
func (w *CacheWarmWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info().Msg("CacheWarmWorker disabled")
		return
	}

	w.log.Info().Dur("interval", w.interval).Msg("CacheWarmWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("CacheWarmWorker stopped")
			return

		case <-ticker.C:
			if err := w.examSvc.PrewarmAllCaches(ctx); err != nil && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("periodic cache warm failed")
			}
		}
	}
}
