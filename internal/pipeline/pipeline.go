// Package pipeline orchestrates one batch reconciliation pass: fetch both
// sources, normalize, apply the lookback window, merge and dedup, and
// canonicalize coordinates. Results are memoized per lookback window.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aaroncolesmith/portland-crime-map/internal/domain"
	"github.com/aaroncolesmith/portland-crime-map/internal/observability"
)

// ErrLookbackOutOfRange is returned for lookback windows outside [1, 365].
var ErrLookbackOutOfRange = errors.New("lookback days out of range [1, 365]")

// Source fetches one raw record batch from an incident-report source.
type Source interface {
	Fetch(ctx context.Context) ([]domain.RawIncident, error)
}

// SnapshotExporter publishes a reconciled snapshot after a refresh.
type SnapshotExporter interface {
	ExportSnapshot(ctx context.Context, incidents []domain.Incident) error
}

// Refresher runs the reconciliation pass and serves memoized results.
type Refresher struct {
	archive  Source
	feed     Source
	exporter SnapshotExporter // nil disables export
	cache    *Cache
	logger   *slog.Logger
	metrics  *observability.Metrics

	refreshMu sync.Mutex // serializes recomputation, not cache reads
	ready     atomic.Bool
}

// New creates a Refresher. Pass a nil exporter to disable snapshot export.
func New(archive, feed Source, exporter SnapshotExporter, cache *Cache, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		archive:  archive,
		feed:     feed,
		exporter: exporter,
		cache:    cache,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once at least one refresh has succeeded.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no reconciliation pass has completed yet")
	}
	return nil
}

// Incidents returns the reconciled incident set for the given lookback
// window, recomputing only when the cached result for that window is missing
// or stale. When recomputation fails and a stale result exists, the stale
// result is served as last-known-good and the error is only logged.
func (r *Refresher) Incidents(ctx context.Context, days int) ([]domain.Incident, error) {
	if days < 1 || days > 365 {
		return nil, fmt.Errorf("%w: %d", ErrLookbackOutOfRange, days)
	}

	if incidents, fresh, ok := r.cache.Get(days); ok && fresh {
		r.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return incidents, nil
	}

	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if incidents, fresh, ok := r.cache.Get(days); ok && fresh {
		r.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return incidents, nil
	}

	incidents, err := r.refresh(ctx, days)
	if err != nil {
		if stale, _, ok := r.cache.Get(days); ok {
			r.metrics.CacheLookups.WithLabelValues("stale").Inc()
			r.logger.Warn("refresh failed, serving last known good result",
				"error", err, "lookback_days", days)
			return stale, nil
		}
		return nil, err
	}

	r.metrics.CacheLookups.WithLabelValues("miss").Inc()
	r.cache.Put(days, incidents)
	return incidents, nil
}

// refresh performs one full fetch-normalize-merge-reconcile pass.
func (r *Refresher) refresh(ctx context.Context, days int) ([]domain.Incident, error) {
	start := time.Now()

	archiveRaw, err := r.fetch(ctx, "archive", r.archive)
	if err != nil {
		return nil, err
	}
	feedRaw, err := r.fetch(ctx, "feed", r.feed)
	if err != nil {
		return nil, err
	}

	archiveInc, archiveFailed := domain.NormalizeBatch(archiveRaw)
	feedInc, feedFailed := domain.NormalizeBatch(feedRaw)
	r.countParsed("archive", len(archiveInc), archiveFailed)
	r.countParsed("feed", len(feedInc), feedFailed)

	cutoff := domain.LookbackCutoff(days)
	archiveInc = domain.FilterSince(archiveInc, cutoff)
	feedInc = domain.FilterSince(feedInc, cutoff)

	merged := domain.MergeDedup(archiveInc, feedInc)
	duplicates := len(archiveInc) + len(feedInc) - len(merged)
	r.metrics.DuplicatesRemoved.Add(float64(duplicates))

	reconciled := domain.CanonicalizeCoordinates(merged)

	r.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	r.metrics.IncidentsCurrent.Set(float64(len(reconciled)))
	r.metrics.LastRefreshTime.SetToCurrentTime()
	r.ready.Store(true)

	r.logger.Info("reconciliation pass complete",
		"lookback_days", days,
		"archive_records", len(archiveRaw),
		"feed_records", len(feedRaw),
		"parse_failures", archiveFailed+feedFailed,
		"duplicates_removed", duplicates,
		"incidents", len(reconciled),
		"duration", time.Since(start),
	)

	if r.exporter != nil {
		if err := r.exporter.ExportSnapshot(ctx, reconciled); err != nil {
			// Export is best-effort; the reconciled result is still valid.
			r.logger.Warn("snapshot export failed", "error", err)
		}
	}

	return reconciled, nil
}

func (r *Refresher) fetch(ctx context.Context, name string, src Source) ([]domain.RawIncident, error) {
	start := time.Now()
	batch, err := src.Fetch(ctx)
	r.metrics.FetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.FetchRequests.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("fetch %s source: %w", name, err)
	}
	r.metrics.FetchRequests.WithLabelValues(name, "success").Inc()
	return batch, nil
}

func (r *Refresher) countParsed(source string, parsed, failed int) {
	r.metrics.RecordsParsed.WithLabelValues(source).Add(float64(parsed))
	if failed > 0 {
		r.metrics.ParseFailures.WithLabelValues(source).Add(float64(failed))
		r.logger.Debug("dropped unparsable records", "source", source, "count", failed)
	}
}
