// README: Persists provider results into the local store in the background, deduplicated by external id.
package place

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"placemap/internal/maps"
	"placemap/internal/metrics"
	"placemap/internal/worker"
)

// CacheStore is the write side the cache writer needs.
type CacheStore interface {
	FindByExternalIDs(ctx context.Context, ids []string) (map[string]Summary, error)
	Create(ctx context.Context, p *Place, categorySlug string) error
}

type CacheWriter struct {
	store  CacheStore
	queue  worker.Submitter
	logger *zap.Logger
}

func NewCacheWriter(store CacheStore, queue worker.Submitter, logger *zap.Logger) *CacheWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheWriter{store: store, queue: queue, logger: logger}
}

// Schedule submits a Write for places and returns immediately.
func (w *CacheWriter) Schedule(places []maps.ExternalPlace, categorySlug string) {
	if len(places) == 0 || categorySlug == "" || w.queue == nil {
		return
	}
	batch := append([]maps.ExternalPlace(nil), places...)
	w.queue.Submit(worker.Task{
		Name: "cache-external-places",
		Run: func(ctx context.Context) error {
			_, err := w.Write(ctx, batch, categorySlug)
			return err
		},
	})
}

// Write stores each place not yet known by external id. Items fail
// independently; the returned count is the number of rows created.
func (w *CacheWriter) Write(ctx context.Context, places []maps.ExternalPlace, categorySlug string) (int, error) {
	ids := make([]string, 0, len(places))
	for _, p := range places {
		if p.ExternalID != "" {
			ids = append(ids, p.ExternalID)
		}
	}
	existing, err := w.store.FindByExternalIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("lookup existing external ids: %w", err)
	}

	created := 0
	seen := make(map[string]bool, len(places))
	for _, ext := range places {
		if ext.ExternalID == "" || seen[ext.ExternalID] {
			metrics.CachedPlaces.WithLabelValues("skipped").Inc()
			continue
		}
		seen[ext.ExternalID] = true
		if _, ok := existing[ext.ExternalID]; ok {
			metrics.CachedPlaces.WithLabelValues("skipped").Inc()
			continue
		}

		err := w.store.Create(ctx, NewFromExternal(ext), categorySlug)
		switch {
		case err == nil:
			created++
			metrics.CachedPlaces.WithLabelValues("created").Inc()
		case errors.Is(err, ErrDuplicateExternalID):
			// lost a race with another writer
			metrics.CachedPlaces.WithLabelValues("skipped").Inc()
		default:
			metrics.CachedPlaces.WithLabelValues("failed").Inc()
			w.logger.Warn("cache external place failed",
				zap.String("external_id", ext.ExternalID),
				zap.String("category", categorySlug),
				zap.Error(err),
			)
		}
	}
	w.logger.Debug("cached external places",
		zap.Int("received", len(places)),
		zap.Int("created", created),
		zap.String("category", categorySlug),
	)
	return created, nil
}
