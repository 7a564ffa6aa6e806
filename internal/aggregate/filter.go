// Package aggregate turns a resolved record set into the two warehouse
// views: a per-package summary and a FEFO-ordered expiry summary.
package aggregate

import (
	"strings"

	"github.com/medeinalab/stock-query-service/internal/models"
)

// Filter applies the defective-stock exclusion and the warehouse scope, in
// that order. The exclusion is unconditional: defective stock never reaches
// an aggregate no matter which scope was requested.
func Filter(records []models.Record, scope models.Scope, site, defectiveSite string) []models.Record {
	site = strings.ToUpper(site)
	defectiveSite = strings.ToUpper(defectiveSite)

	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.Warehouse == defectiveSite {
			continue
		}
		if scope != models.ScopeAll && r.Warehouse != site {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ScopeLabel renders the human-readable scope used in response headers.
func ScopeLabel(scope models.Scope, site string) string {
	if scope == models.ScopeAll {
		return "visuose sandėliuose"
	}
	return site
}
