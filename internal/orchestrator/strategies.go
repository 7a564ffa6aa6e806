package orchestrator

import (
	"strings"

	"github.com/medeinalab/stock-query-service/internal/models"
	"github.com/medeinalab/stock-query-service/internal/snapshot"
)

// strategyFunc is one row-matching strategy. ok reports whether the strategy
// produced a non-empty result; the cascade stops at the first ok.
type strategyFunc func(q *models.Query, snap *snapshot.Snapshot) ([]models.Record, bool)

// Resolver turns a classified query into the matching record set. Code and
// text intents run through fixed-priority strategy cascades; low-stock and
// cutoff intents are predicate scans over the whole snapshot.
type Resolver struct {
	maxFuzzyHits int

	codeCascade []strategyFunc
	textCascade []strategyFunc
}

func NewResolver(maxFuzzyHits int) *Resolver {
	r := &Resolver{maxFuzzyHits: maxFuzzyHits}

	// A code-shaped term that matches nothing stays empty rather than
	// degrading into a fuzzy search, so a typo in a code is reported as
	// "not found" instead of returning a lookalike product.
	r.codeCascade = []strategyFunc{codeExact, codePrefix, codeSubstring}
	r.textCascade = []strategyFunc{barcodeMembership, r.fuzzyWithFamilySweep}
	return r
}

func (r *Resolver) Resolve(q *models.Query, snap *snapshot.Snapshot) []models.Record {
	switch q.Intent {
	case models.IntentLowStock:
		return lowStockRecords(snap.Records, q.Threshold, q.Inclusive)
	case models.IntentExpiryCutoff:
		return cutoffRecords(snap.Records, q.Cutoff)
	case models.IntentProductCode:
		return runCascade(r.codeCascade, q, snap)
	default:
		if q.Norm == "" {
			return nil
		}
		return runCascade(r.textCascade, q, snap)
	}
}

func runCascade(cascade []strategyFunc, q *models.Query, snap *snapshot.Snapshot) []models.Record {
	for _, strategy := range cascade {
		if out, ok := strategy(q, snap); ok {
			return out
		}
	}
	return nil
}

func lowStockRecords(records []models.Record, threshold float64, inclusive bool) []models.Record {
	var out []models.Record
	for _, rec := range records {
		if rec.Available < threshold || (inclusive && rec.Available == threshold) {
			out = append(out, rec)
		}
	}
	return out
}

func cutoffRecords(records []models.Record, cutoff string) []models.Record {
	var out []models.Record
	for _, rec := range records {
		if rec.Expiry != "" && rec.Expiry <= cutoff {
			out = append(out, rec)
		}
	}
	return out
}

func codeExact(q *models.Query, snap *snapshot.Snapshot) ([]models.Record, bool) {
	return matchSKU(snap.Records, func(sku string) bool { return sku == q.Norm })
}

func codePrefix(q *models.Query, snap *snapshot.Snapshot) ([]models.Record, bool) {
	return matchSKU(snap.Records, func(sku string) bool { return strings.HasPrefix(sku, q.Norm) })
}

func codeSubstring(q *models.Query, snap *snapshot.Snapshot) ([]models.Record, bool) {
	return matchSKU(snap.Records, func(sku string) bool { return strings.Contains(sku, q.Norm) })
}

func matchSKU(records []models.Record, pred func(string) bool) ([]models.Record, bool) {
	var out []models.Record
	for _, rec := range records {
		if pred(rec.SKUNorm) {
			out = append(out, rec)
		}
	}
	return out, len(out) > 0
}

func barcodeMembership(q *models.Query, snap *snapshot.Snapshot) ([]models.Record, bool) {
	var out []models.Record
	for _, rec := range snap.Records {
		for _, tok := range rec.BarcodeTokens {
			if tok == q.Norm {
				out = append(out, rec)
				break
			}
		}
	}
	return out, len(out) > 0
}

// fuzzyWithFamilySweep consults the similarity index and, when it produces
// hits, prefers the full substring family of the term over the raw hit list
// so that "lola" returns every Lola lot and variant, not just the
// closest-ranked fifty.
func (r *Resolver) fuzzyWithFamilySweep(q *models.Query, snap *snapshot.Snapshot) ([]models.Record, bool) {
	hits := snap.Index.Search(q.Norm)
	if len(hits) == 0 {
		return nil, false
	}

	if family := familySweep(snap.Records, q.Norm); len(family) > 0 {
		return family, true
	}

	if len(hits) > r.maxFuzzyHits {
		hits = hits[:r.maxFuzzyHits]
	}
	out := make([]models.Record, 0, len(hits))
	for _, h := range hits {
		out = append(out, snap.Records[h.ID])
	}
	return out, true
}

func familySweep(records []models.Record, norm string) []models.Record {
	var out []models.Record
	for _, rec := range records {
		if strings.Contains(rec.NameNorm, norm) ||
			strings.Contains(rec.SKUNorm, norm) ||
			strings.Contains(rec.ExternalNorm, norm) {
			out = append(out, rec)
		}
	}
	return out
}
