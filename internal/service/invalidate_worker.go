package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/icar1an/serenity/internal/repository"
)

// InvalidateWorker listens for PostgreSQL NOTIFY on the classification
// changes channel and drops the matching resolver cache entries. This keeps
// sibling processes coherent when another instance writes a prediction.
type InvalidateWorker struct {
	pool        *pgxpool.Pool
	invalidator Invalidator
	batchWindow time.Duration
	log         zerolog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewInvalidateWorker(pool *pgxpool.Pool, invalidator Invalidator, logger zerolog.Logger) *InvalidateWorker {
	return &InvalidateWorker{
		pool:        pool,
		invalidator: invalidator,
		batchWindow: time.Second,
		log:         logger,
		pending:     make(map[string]struct{}),
	}
}

// Start listens until ctx is cancelled, reconnecting with backoff on
// connection loss.
func (w *InvalidateWorker) Start(ctx context.Context) {
	w.log.Info().Dur("batch_window", w.batchWindow).Msg("invalidate-worker: starting")

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				w.log.Info().Msg("invalidate-worker: stopping")
				return
			}
			w.log.Warn().Err(err).Msg("invalidate-worker: listen error, reconnecting in 5s")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				w.log.Info().Msg("invalidate-worker: stopping")
				return
			}
		}
	}
}

func (w *InvalidateWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+repository.NotifyChannel); err != nil {
		return err
	}
	w.log.Info().Str("channel", repository.NotifyChannel).Msg("invalidate-worker: listening")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if notification.Payload == "" {
			continue
		}

		w.mu.Lock()
		w.pending[notification.Payload] = struct{}{}
		w.mu.Unlock()
	}
}

func (w *InvalidateWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batchWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush()
		case <-ctx.Done():
			w.flush()
			return
		}
	}
}

func (w *InvalidateWorker) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	for key := range batch {
		w.invalidator.Invalidate(key)
	}
	w.log.Debug().Int("keys", len(batch)).Msg("invalidate-worker: cache entries dropped")
}
