package aggregate

import (
	"sort"

	"github.com/medeinalab/stock-query-service/internal/models"
)

type expiryKey struct {
	pkg    string
	expiry string
	unit   string
}

// noExpiryLabel marks groups whose expiry is unknown.
const noExpiryLabel = "—"

// Expiry groups already-filtered records by (package size, expiry, unit) and
// orders groups FEFO: earliest expiry first, unknown expiry last. ISO date
// strings compare correctly lexicographically. today must be an ISO date;
// groups strictly before it are flagged expired.
func Expiry(filtered []models.Record, titleOverride, scopeLabel, today string) ([]models.ExpiryGroup, models.Header) {
	groups := make(map[expiryKey]*models.ExpiryGroup)
	order := make([]expiryKey, 0, len(filtered))

	for _, r := range filtered {
		pkg := PackageSize(r.Name, r.Unit)
		key := expiryKey{pkg: pkg, expiry: r.Expiry, unit: r.Unit}

		g, ok := groups[key]
		if !ok {
			g = &models.ExpiryGroup{
				Package: pkg,
				Expiry:  r.Expiry,
				Unit:    r.Unit,
			}
			groups[key] = g
			order = append(order, key)
		}
		g.QtyAvailable += r.Available
		g.QtyReserved += r.Reserved
		g.QtyTotal += r.StockTotal
	}

	items := make([]models.ExpiryGroup, 0, len(order))
	for _, key := range order {
		items = append(items, *groups[key])
	}

	// FEFO: unknown expiry sorts after every dated group since it cannot be
	// prioritized for picking.
	sort.SliceStable(items, func(i, j int) bool {
		ei, ej := items[i].Expiry, items[j].Expiry
		if ei == "" {
			return false
		}
		if ej == "" {
			return true
		}
		return ei < ej
	})

	for i := range items {
		if items[i].Expiry == "" {
			items[i].ExpiryLabel = noExpiryLabel
			continue
		}
		items[i].Expired = items[i].Expiry < today
		if items[i].Expired {
			items[i].ExpiryLabel = "⚠️ " + items[i].Expiry
		} else {
			items[i].ExpiryLabel = items[i].Expiry
		}
	}

	header := models.Header{
		NameHint: titleOverride,
		Unit:     "vnt",
		Scope:    scopeLabel,
	}
	if len(filtered) > 0 {
		if header.NameHint == "" {
			header.NameHint = filtered[0].Name
		}
		header.Unit = filtered[0].Unit
	}
	for _, r := range filtered {
		header.TotalAvailable += r.Available
		header.TotalReserved += r.Reserved
		header.TotalStock += r.StockTotal
	}

	return items, header
}
