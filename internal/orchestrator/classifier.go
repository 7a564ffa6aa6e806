package orchestrator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/medeinalab/stock-query-service/internal/models"
	"github.com/medeinalab/stock-query-service/internal/textnorm"
)

var (
	productCodePattern = regexp.MustCompile(`(?i)^BDM_\d+$`)
	codeInTextPattern  = regexp.MustCompile(`(?i)BDM_\d+`)
	isoDatePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	// Low-stock surface forms, matched against the normalized term. The
	// symbolic forms are anchored so "<10" inside a longer sentence does not
	// hijack a text search; the word forms match anywhere.
	lowStockLtDot  = regexp.MustCompile(`^lt\.(\d+)$`)
	lowStockLt     = regexp.MustCompile(`^<\s*(\d+)$`)
	lowStockLte    = regexp.MustCompile(`^<=\s*(\d+)$`)
	lowStockLteUni = regexp.MustCompile(`^≤\s*(\d+)$`)
	lowStockWordEN = regexp.MustCompile(`\b(?:under|less\s*than|below)\s+(\d+)\b`)
	lowStockWordLT = regexp.MustCompile(`\bmaziau\s*(?:nei)?\s*(\d+)\b`)

	scopeAllEN = regexp.MustCompile(`\b(?:all|entire|whole)\b.*\b(?:warehouse|stock)\b`)
	scopeAllLT = regexp.MustCompile(`\b(?:visas|visuose|visam|visame)\b.*\bsandel`)
)

// noiseTokens are directive words users append to a term ("BDM_142411
// expiry", "rodyk likucius prasau"). They carry intent for the bot layer but
// must not reach the row resolution. Compared after Norm, so only the
// diacritic-free spellings are listed.
var noiseTokens = map[string]bool{
	"expiry": true, "expiries": true, "exp": true, "bbf": true,
	"galiojimas": true, "galiojimai": true, "galioj": true,
	"rodyk": true, "show": true, "taip": true, "yes": true,
	"please": true, "prasau": true, "next": true, "more": true,
	"daugiau": true, "longer": true, "paketai": true, "packages": true,
	"partijos": true, "batches": true,
}

// Classify inspects a raw term and produces the classified query. Intents
// are tested in fixed precedence: low-stock expression, ISO date cutoff,
// product-code pattern, free text. Scope wording is detected independently
// of the intent.
func Classify(raw string) *models.Query {
	q := &models.Query{
		Raw:   strings.TrimSpace(raw),
		Scope: parseScope(raw),
	}

	norm := textnorm.Norm(q.Raw)

	if threshold, inclusive, ok := parseLowStock(norm); ok {
		q.Intent = models.IntentLowStock
		q.Threshold = threshold
		q.Inclusive = inclusive
		cmp := "<"
		if inclusive {
			cmp = "≤"
		}
		q.Title = fmt.Sprintf("Likutis %s %d", cmp, int(threshold))
		return q
	}

	if isoDatePattern.MatchString(q.Raw) {
		q.Intent = models.IntentExpiryCutoff
		q.Cutoff = q.Raw
		q.Title = "Galiojimai iki " + q.Cutoff
		return q
	}

	core := stripNoise(q.Raw)
	if q.Scope == models.ScopeAll {
		core = stripScopeWords(core)
	}
	if m := codeInTextPattern.FindString(core); m != "" {
		core = m
	}
	q.Core = core
	q.Norm = textnorm.Norm(core)

	if productCodePattern.MatchString(core) {
		q.Intent = models.IntentProductCode
		return q
	}

	q.Intent = models.IntentFreeText
	return q
}

// parseLowStock recognizes the equivalent "quantity below N" spellings:
// lt.N, <N, <=N, ≤N, under/below/less than N, mažiau (nei) N.
func parseLowStock(norm string) (threshold float64, inclusive bool, ok bool) {
	if m := lowStockLtDot.FindStringSubmatch(norm); m != nil {
		return mustNumber(m[1]), false, true
	}
	if m := lowStockLt.FindStringSubmatch(norm); m != nil {
		return mustNumber(m[1]), false, true
	}
	if m := lowStockLte.FindStringSubmatch(norm); m != nil {
		return mustNumber(m[1]), true, true
	}
	if m := lowStockLteUni.FindStringSubmatch(norm); m != nil {
		return mustNumber(m[1]), true, true
	}
	if m := lowStockWordEN.FindStringSubmatch(norm); m != nil {
		return mustNumber(m[1]), false, true
	}
	if m := lowStockWordLT.FindStringSubmatch(norm); m != nil {
		return mustNumber(m[1]), false, true
	}
	return 0, false, false
}

func parseScope(raw string) models.Scope {
	s := textnorm.Norm(raw)
	if scopeAllEN.MatchString(s) || scopeAllLT.MatchString(s) {
		return models.ScopeAll
	}
	return models.ScopeDefault
}

// stripNoise drops directive tokens so "BDM_142411 expiry" resolves as if
// the term were just the code. The remaining tokens keep their original
// folding (case is preserved for the code extraction above).
func stripNoise(raw string) string {
	tokens := strings.Fields(textnorm.Fold(raw))
	kept := tokens[:0]
	for _, t := range tokens {
		if !noiseTokens[textnorm.Norm(t)] {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// scopeWords are the tokens of the "all warehouses" phrasings. They are only
// stripped once the scope has actually been detected, so a product name that
// happens to contain "stock" is left alone in default-scope queries.
var scopeWords = map[string]bool{
	"all": true, "entire": true, "whole": true, "warehouse": true, "stock": true,
	"in": true, "the": true,
	"visas": true, "visuose": true, "visam": true, "visame": true,
}

func stripScopeWords(core string) string {
	tokens := strings.Fields(core)
	kept := tokens[:0]
	for _, t := range tokens {
		n := textnorm.Norm(t)
		if scopeWords[n] || strings.HasPrefix(n, "sandel") {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, " ")
}

func mustNumber(s string) float64 {
	n, _ := strconv.ParseFloat(s, 64)
	return n
}
