package orchestrator

import (
	"strings"
	"testing"
	"time"

	"github.com/medeinalab/stock-query-service/internal/fuzzy"
	"github.com/medeinalab/stock-query-service/internal/models"
	"github.com/medeinalab/stock-query-service/internal/schema"
	"github.com/medeinalab/stock-query-service/internal/snapshot"
)

func row(sku, name, barcode, warehouse, expiry string, available float64) models.RawRow {
	return models.RawRow{
		"Prekės Nr.":         sku,
		"Prekės pavadinimas": name,
		"Brūkšninis kodas":   barcode,
		"Sandėlis":           warehouse,
		"Galiojimo data":     expiry,
		"Faktiškai turima":   available,
		"Vienetas":           "vnt",
	}
}

func buildSnapshot(rows []models.RawRow) *snapshot.Snapshot {
	records := schema.BuildRecords(rows)
	ix := fuzzy.NewIndex(0.72)
	for i, rec := range records {
		ix.Add(i, rec.NameNorm, rec.SKUNorm, rec.ExternalNorm, strings.Join(rec.BarcodeTokens, " "))
	}
	return &snapshot.Snapshot{Rows: rows, Records: records, Index: ix, FetchedAt: time.Now()}
}

func resolve(t *testing.T, snap *snapshot.Snapshot, term string) []models.Record {
	t.Helper()
	return NewResolver(50).Resolve(Classify(term), snap)
}

func TestResolve_CodeExactBeatsPrefix(t *testing.T) {
	snap := buildSnapshot([]models.RawRow{
		row("BDM_1424", "A", "", "KLC1", "", 1),
		row("BDM_142411", "B", "", "KLC1", "", 1),
	})

	out := resolve(t, snap, "BDM_1424")
	if len(out) != 1 || out[0].SKU != "BDM_1424" {
		t.Errorf("exact code match should win alone, got %v", out)
	}
}

func TestResolve_CodePrefixWhenNoExact(t *testing.T) {
	snap := buildSnapshot([]models.RawRow{
		row("BDM_142411", "A", "", "KLC1", "", 1),
		row("BDM_142499", "B", "", "KLC1", "", 1),
		row("BDM_999999", "C", "", "KLC1", "", 1),
	})

	out := resolve(t, snap, "BDM_1424")
	if len(out) != 2 {
		t.Fatalf("expected both prefix matches, got %d", len(out))
	}
	for _, rec := range out {
		if !strings.HasPrefix(rec.SKU, "BDM_1424") {
			t.Errorf("unexpected record %q", rec.SKU)
		}
	}
}

func TestResolve_UnknownCodeStaysEmpty(t *testing.T) {
	snap := buildSnapshot([]models.RawRow{
		row("BDM_142411", "LOLA 250 ML", "", "KLC1", "", 1),
	})

	// A mistyped code must report "not found", never fall through to a
	// fuzzy lookalike.
	if out := resolve(t, snap, "BDM_999999"); len(out) != 0 {
		t.Errorf("unknown code resolved to %v", out)
	}
}

func TestResolve_BarcodeTokenMembership(t *testing.T) {
	snap := buildSnapshot([]models.RawRow{
		row("BDM_1", "LOLA 250 ML", "4770123456789, 4770987654321", "KLC1", "", 1),
		row("BDM_2", "KREMAS", "5900111222333", "KLC1", "", 1),
	})

	out := resolve(t, snap, "4770987654321")
	if len(out) != 1 || out[0].SKU != "BDM_1" {
		t.Errorf("barcode token lookup failed, got %v", out)
	}
}

func TestResolve_FreeTextPrefersFamilySweep(t *testing.T) {
	snap := buildSnapshot([]models.RawRow{
		row("BDM_1", "LOLA 250 ML", "", "KLC1", "", 1),
		row("BDM_2", "LOLA 50 ML", "", "KLC1", "", 1),
		row("BDM_3", "KREMAS X", "", "KLC1", "", 1),
	})

	out := resolve(t, snap, "lola")
	if len(out) != 2 {
		t.Fatalf("expected the whole lola family, got %d records", len(out))
	}
	for _, rec := range out {
		if !strings.Contains(rec.NameNorm, "lola") {
			t.Errorf("non-family record %q in sweep result", rec.Name)
		}
	}
}

func TestResolve_FreeTextTypoFallsBackToFuzzyHits(t *testing.T) {
	snap := buildSnapshot([]models.RawRow{
		row("BDM_1", "LOLA 250 ML", "", "KLC1", "", 1),
		row("BDM_3", "VISISKAI KITAS", "", "KLC1", "", 1),
	})

	// "lolla" is no substring of anything, so the sweep is empty and the
	// ranked fuzzy hits are used instead.
	out := resolve(t, snap, "lolla")
	if len(out) == 0 {
		t.Fatal("typo term should still resolve via fuzzy matching")
	}
	if out[0].SKU != "BDM_1" {
		t.Errorf("best fuzzy hit = %q, want BDM_1", out[0].SKU)
	}
}

func TestResolve_FuzzyHitsCapped(t *testing.T) {
	rows := make([]models.RawRow, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, row("BDM_"+strings.Repeat("9", i+1), "ZOLA", "", "KLC1", "", 1))
	}
	snap := buildSnapshot(rows)

	out := NewResolver(3).Resolve(Classify("zolla"), snap)
	if len(out) > 3 {
		t.Errorf("fuzzy hit list not capped: %d records", len(out))
	}
}

func TestResolve_LowStockThreshold(t *testing.T) {
	snap := buildSnapshot([]models.RawRow{
		row("BDM_1", "A", "", "KLC1", "", 3),
		row("BDM_2", "B", "", "KLC1", "", 10),
		row("BDM_3", "C", "", "KLC1", "", 15),
	})

	out := resolve(t, snap, "lt.10")
	if len(out) != 1 || out[0].SKU != "BDM_1" {
		t.Errorf("strict threshold: got %v", out)
	}

	out = resolve(t, snap, "<=10")
	if len(out) != 2 {
		t.Errorf("inclusive threshold should add the boundary row, got %d", len(out))
	}
}

func TestResolve_ExpiryCutoff(t *testing.T) {
	snap := buildSnapshot([]models.RawRow{
		row("BDM_1", "A", "", "KLC1", "2025-06-01", 1),
		row("BDM_2", "B", "", "KLC1", "2025-12-31", 1),
		row("BDM_3", "C", "", "KLC1", "", 1),
	})

	out := resolve(t, snap, "2025-06-30")
	if len(out) != 1 || out[0].SKU != "BDM_1" {
		t.Errorf("cutoff scan: got %v", out)
	}

	// The boundary date itself is included.
	out = resolve(t, snap, "2025-06-01")
	if len(out) != 1 {
		t.Errorf("cutoff boundary should be inclusive, got %d records", len(out))
	}
}

func TestResolve_EmptyTermYieldsNothing(t *testing.T) {
	snap := buildSnapshot([]models.RawRow{
		row("BDM_1", "A", "", "KLC1", "", 1),
	})

	// Pure noise strips down to an empty core term.
	if out := resolve(t, snap, "rodyk please"); len(out) != 0 {
		t.Errorf("noise-only term resolved to %v", out)
	}
}
