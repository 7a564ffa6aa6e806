// Package orchestrator ties the query pipeline together: classify the term,
// make sure a fresh snapshot exists, resolve rows, aggregate the requested
// view and page the result.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medeinalab/stock-query-service/internal/aggregate"
	"github.com/medeinalab/stock-query-service/internal/config"
	"github.com/medeinalab/stock-query-service/internal/models"
	"github.com/medeinalab/stock-query-service/internal/observability"
	"github.com/medeinalab/stock-query-service/internal/snapshot"
)

// ErrTermMissing is returned for empty or whitespace-only terms. The HTTP
// layer maps it to a 400.
var ErrTermMissing = errors.New("term missing")

// ResponseCache stores rendered responses keyed by the request shape. A nil
// cache disables response caching without branching at every call site.
type ResponseCache interface {
	Get(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, bool)
	Set(ctx context.Context, req *models.QueryRequest, resp *models.QueryResponse)
}

type Orchestrator struct {
	store     *snapshot.Store
	cache     ResponseCache
	resolver  *Resolver
	slowQuery *observability.SlowQueryDetector
	cfg       *config.Config
	logger    *zap.Logger
}

func New(store *snapshot.Store, cache ResponseCache, resolver *Resolver, slowQuery *observability.SlowQueryDetector, cfg *config.Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		cache:     cache,
		resolver:  resolver,
		slowQuery: slowQuery,
		cfg:       cfg,
		logger:    logger,
	}
}

// Query runs one stock query end to end. The request is normalized in place:
// limit is clamped to [1, max], cursor floored at 0 and the view defaulted,
// so cache keys and the echoed meta always describe what actually ran.
func (o *Orchestrator) Query(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	ctx, span := observability.StartSpan(ctx, "orchestrator.query")
	defer span.End()

	start := time.Now()

	req.Term = strings.TrimSpace(req.Term)
	if req.Term == "" {
		observability.QueryRequestsTotal.WithLabelValues("unknown", "bad_request").Inc()
		return nil, ErrTermMissing
	}
	o.normalize(req)

	if o.cache != nil && !req.Refresh {
		if resp, ok := o.cache.Get(ctx, req); ok {
			observability.CacheHits.Inc()
			resp.Meta.CacheHit = true
			resp.Meta.RequestID = req.RequestID
			observability.QueryRequestsTotal.WithLabelValues(resp.Meta.Intent, "success").Inc()
			return resp, nil
		}
		observability.CacheMisses.Inc()
	}

	snap, err := o.store.Ensure(ctx, req.Refresh)
	if err != nil {
		observability.QueryRequestsTotal.WithLabelValues("unknown", "error").Inc()
		return nil, err
	}

	q := Classify(req.Term)
	resolved := o.resolver.Resolve(q, snap)

	filtered := aggregate.Filter(resolved, q.Scope, o.cfg.Snapshot.DefaultSite, o.cfg.Snapshot.DefectiveSite)
	scopeLabel := aggregate.ScopeLabel(q.Scope, o.cfg.Snapshot.DefaultSite)

	resp := &models.QueryResponse{}
	switch req.View {
	case "expiry":
		today := time.Now().UTC().Format("2006-01-02")
		items, header := aggregate.Expiry(filtered, q.Title, scopeLabel, today)
		paged, page := aggregate.Paginate(items, req.Cursor, req.Limit)
		resp.Kind = "expiry"
		resp.Items = paged
		resp.Header = header
		resp.Page = page
	default:
		items, totals, header := aggregate.Packages(filtered, q.Title, scopeLabel)
		paged, page := aggregate.Paginate(items, req.Cursor, req.Limit)
		resp.Kind = "packages"
		resp.Items = paged
		resp.Totals = &totals
		resp.Header = header
		resp.Page = page
	}

	allRows := make([]models.RawRow, len(filtered))
	for i, rec := range filtered {
		allRows[i] = rec.Raw
	}
	pagedRows, _ := aggregate.Paginate(allRows, req.Cursor, req.Limit)
	resp.Raw = &models.RawBlock{
		Total:   len(filtered),
		Rows:    pagedRows,
		AllRows: allRows,
	}

	elapsed := time.Since(start)
	resp.Meta = models.Meta{
		Term:        req.Term,
		View:        req.View,
		Scope:       q.Scope.String(),
		Intent:      q.Intent.String(),
		Refresh:     req.Refresh,
		CacheAgeMs:  snap.Age(time.Now()).Milliseconds(),
		GeneratedMs: float64(elapsed.Microseconds()) / 1000,
		RequestID:   req.RequestID,
	}

	observability.QueryRequestsTotal.WithLabelValues(resp.Meta.Intent, "success").Inc()
	observability.QueryRequestDuration.WithLabelValues(resp.Meta.Intent, resp.Kind, "success").Observe(elapsed.Seconds())
	o.slowQuery.Intercept(ctx, req.Term, resp.Meta.Intent, elapsed, len(resolved), resp.Page.Total)

	o.logger.Debug("query served",
		zap.String("intent", resp.Meta.Intent),
		zap.String("view", resp.Kind),
		zap.String("scope", resp.Meta.Scope),
		zap.Int("rows_resolved", len(resolved)),
		zap.Int("rows_filtered", len(filtered)),
		zap.Int("total_items", resp.Page.Total),
		zap.Duration("elapsed", elapsed),
	)

	if o.cache != nil {
		o.cache.Set(ctx, req, resp)
	}
	return resp, nil
}

func (o *Orchestrator) normalize(req *models.QueryRequest) {
	if req.View != "expiry" {
		req.View = "packages"
	}
	if req.Limit <= 0 {
		req.Limit = o.cfg.Search.DefaultLimit
	}
	if req.Limit > o.cfg.Search.MaxLimit {
		req.Limit = o.cfg.Search.MaxLimit
	}
	if req.Cursor < 0 {
		req.Cursor = 0
	}
}

// SnapshotInfo reports the cached row set for the readiness endpoint.
func (o *Orchestrator) SnapshotInfo() *models.SnapshotInfo {
	snap := o.store.Current()
	if snap == nil {
		return nil
	}
	return &models.SnapshotInfo{Rows: len(snap.Records), FetchedAt: snap.FetchedAt}
}
