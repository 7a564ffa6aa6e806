package aggregate

import (
	"sort"

	"github.com/medeinalab/stock-query-service/internal/models"
)

// packageKey is the composite grouping key of the packages view. A struct
// key gives value equality without serialization tricks.
type packageKey struct {
	sku  string
	ext  string
	pkg  string
	unit string
	name string
}

// Packages groups already-filtered records by (sku, external code, package
// size, unit, name), sums the quantity fields per group and orders groups by
// package size ascending (numeric first, then lexicographic tie-break).
func Packages(filtered []models.Record, titleOverride, scopeLabel string) ([]models.PackageGroup, models.Totals, models.Header) {
	groups := make(map[packageKey]*models.PackageGroup)
	order := make([]packageKey, 0, len(filtered))

	for _, r := range filtered {
		pkg := PackageSize(r.Name, r.Unit)
		key := packageKey{sku: r.SKU, ext: r.ExternalCode, pkg: pkg, unit: r.Unit, name: r.Name}

		g, ok := groups[key]
		if !ok {
			g = &models.PackageGroup{
				SKU:          r.SKU,
				ExternalCode: r.ExternalCode,
				Package:      pkg,
				Unit:         r.Unit,
				Name:         r.Name,
			}
			groups[key] = g
			order = append(order, key)
		}
		g.TotalAvailable += r.Available
		g.TotalReserved += r.Reserved
		g.TotalStock += r.StockTotal
	}

	items := make([]models.PackageGroup, 0, len(order))
	for _, key := range order {
		items = append(items, *groups[key])
	}

	sort.SliceStable(items, func(i, j int) bool {
		ai, aj := sizeMagnitude(items[i].Package), sizeMagnitude(items[j].Package)
		if ai != aj {
			return ai < aj
		}
		return items[i].Package < items[j].Package
	})

	totals := models.Totals{UnitHint: "vnt"}
	for _, it := range items {
		totals.TotalAvailable += it.TotalAvailable
		totals.TotalReserved += it.TotalReserved
		totals.TotalStock += it.TotalStock
	}
	if len(items) > 0 {
		totals.UnitHint = items[0].Unit
	}

	nameHint := titleOverride
	if nameHint == "" && len(items) > 0 {
		nameHint = items[0].Name
	}

	header := models.Header{
		NameHint:       nameHint,
		Unit:           totals.UnitHint,
		Scope:          scopeLabel,
		TotalAvailable: totals.TotalAvailable,
	}

	return items, totals, header
}
