// Package snapshot owns the in-memory copy of the stock table. The row set
// is replaced wholesale on refresh; there are no partial updates. A snapshot
// is immutable once built, so request handling never locks per row.
package snapshot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/medeinalab/stock-query-service/internal/fuzzy"
	"github.com/medeinalab/stock-query-service/internal/models"
	"github.com/medeinalab/stock-query-service/internal/observability"
	"github.com/medeinalab/stock-query-service/internal/schema"
)

// Source pulls the full, unfiltered row set. No querying or paging is pushed
// down; the whole table comes back on every call.
type Source interface {
	FetchAll(ctx context.Context) ([]models.RawRow, error)
}

// Snapshot is one immutable view of the stock table: the raw rows, their
// canonical records (same indices) and a fuzzy index over the records.
type Snapshot struct {
	Rows      []models.RawRow
	Records   []models.Record
	Index     *fuzzy.Index
	FetchedAt time.Time
}

// Age returns how stale the snapshot was at the given instant.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

type Store struct {
	source         Source
	ttl            time.Duration
	fuzzyThreshold float64
	breaker        *gobreaker.CircuitBreaker
	logger         *zap.Logger

	mu sync.Mutex // serializes refreshes

	snapMu sync.RWMutex
	snap   *Snapshot
}

func NewStore(source Source, ttl time.Duration, fuzzyThreshold float64, breaker *gobreaker.CircuitBreaker, logger *zap.Logger) *Store {
	return &Store{
		source:         source,
		ttl:            ttl,
		fuzzyThreshold: fuzzyThreshold,
		breaker:        breaker,
		logger:         logger,
	}
}

// Current returns the cached snapshot, or nil before the first refresh.
func (s *Store) Current() *Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

// Ensure returns a snapshot no older than the TTL, refreshing if needed.
// force bypasses the TTL. A failed refresh propagates to the caller instead
// of silently serving stale data.
func (s *Store) Ensure(ctx context.Context, force bool) (*Snapshot, error) {
	if !force {
		if snap := s.Current(); snap != nil && snap.Age(time.Now()) < s.ttl {
			return snap, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have refreshed while we waited for the lock.
	if !force {
		if snap := s.Current(); snap != nil && snap.Age(time.Now()) < s.ttl {
			return snap, nil
		}
	}

	snap, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
	return snap, nil
}

func (s *Store) refresh(ctx context.Context) (*Snapshot, error) {
	ctx, span := observability.StartSpan(ctx, "snapshot.refresh")
	defer span.End()

	start := time.Now()
	s.logger.Info("refreshing stock snapshot")

	result, err := s.breaker.Execute(func() (any, error) {
		return s.source.FetchAll(ctx)
	})
	if err != nil {
		observability.SnapshotRefreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("snapshot refresh: %w", err)
	}
	rows := result.([]models.RawRow)

	records := schema.BuildRecords(rows)

	index := fuzzy.NewIndex(s.fuzzyThreshold)
	for i, rec := range records {
		index.Add(i, rec.NameNorm, rec.SKUNorm, rec.ExternalNorm, strings.Join(rec.BarcodeTokens, " "))
	}

	observability.SnapshotRefreshTotal.WithLabelValues("success").Inc()
	observability.SnapshotRefreshDuration.Observe(time.Since(start).Seconds())
	observability.SnapshotRows.Set(float64(len(rows)))

	s.logger.Info("stock snapshot refreshed",
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Snapshot{
		Rows:      rows,
		Records:   records,
		Index:     index,
		FetchedAt: time.Now(),
	}, nil
}
