package observability

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type SlowQueryDetector struct {
	warningThreshold  time.Duration
	criticalThreshold time.Duration
	logger            *zap.Logger
}

func NewSlowQueryDetector(warning, critical time.Duration, logger *zap.Logger) *SlowQueryDetector {
	return &SlowQueryDetector{
		warningThreshold:  warning,
		criticalThreshold: critical,
		logger:            logger,
	}
}

// Intercept records a finished query. Fast queries (the vast majority)
// return immediately with zero overhead.
func (sqd *SlowQueryDetector) Intercept(ctx context.Context, term, intent string, duration time.Duration, rowsConsidered, itemsReturned int) {
	if duration <= sqd.warningThreshold {
		return
	}

	severity := sqd.classifySeverity(duration)
	SlowQueryCounter.WithLabelValues(severity, intent).Inc()

	sqd.logger.Warn("slow query detected",
		zap.String("trace_id", TraceIDFromContext(ctx)),
		zap.String("term_hash", hashTermForLog(term)),
		zap.String("intent", intent),
		zap.Float64("duration_ms", float64(duration.Milliseconds())),
		zap.Int("rows_considered", rowsConsidered),
		zap.Int("items_returned", itemsReturned),
		zap.String("severity", severity),
	)
}

func (sqd *SlowQueryDetector) classifySeverity(d time.Duration) string {
	if d > sqd.criticalThreshold {
		return "critical"
	}
	if d > sqd.warningThreshold {
		return "warning"
	}
	return "normal"
}

// hashTermForLog keeps raw terms (which can embed product names) out of logs.
func hashTermForLog(term string) string {
	return fmt.Sprintf("%016x", hashUint64(term))
}

func hashUint64(s string) uint64 {
	h := uint64(0)
	for _, c := range s {
		h = h*31 + uint64(c)
	}
	return h
}
