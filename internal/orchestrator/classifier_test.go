package orchestrator

import (
	"testing"

	"github.com/medeinalab/stock-query-service/internal/models"
)

func TestClassify_LowStock(t *testing.T) {
	tests := []struct {
		term      string
		threshold float64
		inclusive bool
		title     string
	}{
		{"lt.10", 10, false, "Likutis < 10"},
		{"<10", 10, false, "Likutis < 10"},
		{"< 25", 25, false, "Likutis < 25"},
		{"<=5", 5, true, "Likutis ≤ 5"},
		{"≤ 5", 5, true, "Likutis ≤ 5"},
		{"under 100", 100, false, "Likutis < 100"},
		{"less than 7", 7, false, "Likutis < 7"},
		{"below 3", 3, false, "Likutis < 3"},
		{"mažiau nei 20", 20, false, "Likutis < 20"},
		{"maziau 15", 15, false, "Likutis < 15"},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			q := Classify(tt.term)
			if q.Intent != models.IntentLowStock {
				t.Fatalf("intent = %v, want low-stock", q.Intent)
			}
			if q.Threshold != tt.threshold || q.Inclusive != tt.inclusive {
				t.Errorf("threshold = %v inclusive = %v, want %v/%v", q.Threshold, q.Inclusive, tt.threshold, tt.inclusive)
			}
			if q.Title != tt.title {
				t.Errorf("title = %q, want %q", q.Title, tt.title)
			}
		})
	}
}

func TestClassify_ExpiryCutoff(t *testing.T) {
	q := Classify("2025-09-30")
	if q.Intent != models.IntentExpiryCutoff {
		t.Fatalf("intent = %v, want expiry-cutoff", q.Intent)
	}
	if q.Cutoff != "2025-09-30" {
		t.Errorf("cutoff = %q", q.Cutoff)
	}
	if q.Title != "Galiojimai iki 2025-09-30" {
		t.Errorf("title = %q", q.Title)
	}
}

func TestClassify_NonISODateIsFreeText(t *testing.T) {
	for _, term := range []string{"30-09-2025", "2025/09/30", "2025-9-30"} {
		if q := Classify(term); q.Intent != models.IntentFreeText {
			t.Errorf("%q: intent = %v, want free-text", term, q.Intent)
		}
	}
}

func TestClassify_ProductCode(t *testing.T) {
	tests := []struct {
		term string
		core string
	}{
		{"BDM_142411", "BDM_142411"},
		{"bdm_142411", "bdm_142411"},
		{"  BDM_142411  ", "BDM_142411"},
		{"BDM_142411 expiry", "BDM_142411"},
		{"rodyk BDM_142411 galiojimai prasau", "BDM_142411"},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			q := Classify(tt.term)
			if q.Intent != models.IntentProductCode {
				t.Fatalf("intent = %v, want product-code", q.Intent)
			}
			if q.Core != tt.core {
				t.Errorf("core = %q, want %q", q.Core, tt.core)
			}
		})
	}
}

func TestClassify_FreeText(t *testing.T) {
	q := Classify("Lola 250")
	if q.Intent != models.IntentFreeText {
		t.Fatalf("intent = %v, want free-text", q.Intent)
	}
	if q.Norm != "lola 250" {
		t.Errorf("norm = %q", q.Norm)
	}
}

func TestClassify_NoiseTokensStripped(t *testing.T) {
	q := Classify("lola 250 packages please")
	if q.Core != "lola 250" {
		t.Errorf("core = %q, want noise stripped", q.Core)
	}
}

func TestClassify_ScopeDetection(t *testing.T) {
	tests := []struct {
		term string
		want models.Scope
	}{
		{"lola 250", models.ScopeDefault},
		{"lola in all warehouse", models.ScopeAll},
		{"lola in the entire stock", models.ScopeAll},
		{"lola visuose sandėliuose", models.ScopeAll},
		{"lola visame sandelyje", models.ScopeAll},
		// Scope wording is honored for every intent, not only free text.
		{"mažiau nei 10 visuose sandėliuose", models.ScopeAll},
		{"BDM_142411 visuose sandėliuose", models.ScopeAll},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if q := Classify(tt.term); q.Scope != tt.want {
				t.Errorf("scope = %v, want %v", q.Scope, tt.want)
			}
		})
	}
}

func TestClassify_ScopeWordsStrippedFromCore(t *testing.T) {
	if q := Classify("lola visuose sandėliuose"); q.Core != "lola" {
		t.Errorf("core = %q, want scope phrase removed", q.Core)
	}
	if q := Classify("lola in all warehouse"); q.Core != "lola" {
		t.Errorf("core = %q, want scope phrase removed", q.Core)
	}
	// Default-scope terms keep every token.
	if q := Classify("lola stock cream"); q.Core != "lola stock cream" {
		t.Errorf("core = %q, want untouched", q.Core)
	}
}

func TestClassify_LowStockWithScopeWords(t *testing.T) {
	q := Classify("mažiau nei 10 visuose sandėliuose")
	if q.Intent != models.IntentLowStock {
		t.Fatalf("intent = %v, want low-stock", q.Intent)
	}
	if q.Threshold != 10 {
		t.Errorf("threshold = %v", q.Threshold)
	}
}

func TestClassify_DiacriticsFoldedInNorm(t *testing.T) {
	q := Classify("Sandėlis Šampūnas")
	if q.Norm != "sandelis sampunas" {
		t.Errorf("norm = %q", q.Norm)
	}
}
