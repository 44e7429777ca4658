package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"docex/internal/port"
)

// QueueWorkerConfig holds settings for the extraction queue worker.
type QueueWorkerConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
}

// ExtractionQueueWorker polls for queued extractions and processes them.
type ExtractionQueueWorker struct {
	repo    port.ExtractionRepository
	service ExtractionService
	cfg     QueueWorkerConfig
	wg      sync.WaitGroup
}

// NewExtractionQueueWorker creates a new ExtractionQueueWorker.
func NewExtractionQueueWorker(repo port.ExtractionRepository, svc ExtractionService, cfg QueueWorkerConfig) *ExtractionQueueWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxAttempts
	}
	return &ExtractionQueueWorker{
		repo:    repo,
		service: svc,
		cfg:     cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight extractions have finished.
func (w *ExtractionQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Info().
		Dur("poll", w.cfg.PollInterval).
		Int("concurrency", w.cfg.Concurrency).
		Int("max_retries", w.cfg.MaxRetries).
		Msg("extractionQueueWorker: started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("extractionQueueWorker: shutting down, waiting for in-flight extractions")
			w.wg.Wait()
			log.Info().Msg("extractionQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			exts, err := w.repo.ClaimQueued(ctx, w.cfg.MaxRetries, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Error().Err(err).Msg("extractionQueueWorker: ClaimQueued error")
				continue
			}

			for i := range exts {
				ext := exts[i]

				sem <- struct{}{}
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }()

					// Detached from the poll context so in-flight work
					// completes during shutdown.
					procCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
					defer cancel()

					log.Debug().Str("extraction_id", ext.ID.String()).Int("attempt", ext.Attempts).
						Msg("extractionQueueWorker: dispatching extraction")
					w.service.Process(procCtx, &ext, w.cfg.MaxRetries)
				}()
			}
		}
	}
}
