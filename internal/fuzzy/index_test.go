package fuzzy

import "testing"

func TestDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "acb", 1}, // transposition
		{"abc", "", 3},
		{"lola", "lolla", 1},
	}

	for _, tt := range tests {
		if got := damerauLevenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("damerauLevenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	if s := similarity("", ""); s != 1 {
		t.Errorf("similarity of empty strings = %v, want 1", s)
	}
	if s := similarity("abc", ""); s != 0 {
		t.Errorf("similarity against empty = %v, want 0", s)
	}
	if s := similarity("abc", "abc"); s != 1 {
		t.Errorf("identical similarity = %v, want 1", s)
	}
}

func TestBestSimilarity_TokenOrderInsensitive(t *testing.T) {
	plain := similarity("lola 250ml", "250ml lola")
	best := bestSimilarity("lola 250ml", "250ml lola")
	if best != 1 {
		t.Errorf("token-sorted similarity = %v, want 1", best)
	}
	if best < plain {
		t.Error("bestSimilarity must never be below plain similarity")
	}
}

func TestBestSimilarity_ShortQueryAgainstLongName(t *testing.T) {
	if s := bestSimilarity("lola", "lola 250 ml"); s != 1 {
		t.Errorf("per-token similarity = %v, want 1", s)
	}
	if s := bestSimilarity("lolla", "lola 250 ml"); s < 0.72 {
		t.Errorf("typo similarity = %v, want at least 0.72", s)
	}
}

func TestIndex_SearchRanksByScore(t *testing.T) {
	ix := NewIndex(0.5)
	ix.Add(0, "lola sampunas")
	ix.Add(1, "lola kremas")
	ix.Add(2, "visiskai kitas produktas")

	matches := ix.Search("lola sampunas")
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
	if matches[0].ID != 0 {
		t.Errorf("expected exact value ranked first, got id %d", matches[0].ID)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Error("matches not sorted by score descending")
		}
	}
}

func TestIndex_ThresholdFiltersWeakCandidates(t *testing.T) {
	ix := NewIndex(0.9)
	ix.Add(0, "lola sampunas")
	ix.Add(1, "cola sultys")

	matches := ix.Search("lola sampunas")
	for _, m := range matches {
		if m.ID == 1 {
			t.Error("weak candidate should be below the 0.9 threshold")
		}
	}
}

func TestIndex_EmptyQueryAndEmptyFields(t *testing.T) {
	ix := NewIndex(0.5)
	ix.Add(0, "", "lola")

	if got := ix.Search(""); got != nil {
		t.Errorf("empty query should return nil, got %v", got)
	}
	if ix.Len() != 1 {
		t.Errorf("Len = %d, want 1", ix.Len())
	}
}

func TestIndex_MultipleFieldsPerDoc(t *testing.T) {
	ix := NewIndex(0.7)
	ix.Add(0, "lola kremas", "bdm_142411")

	if m := ix.Search("bdm_142411"); len(m) != 1 || m[0].ID != 0 {
		t.Errorf("expected code field to match, got %v", m)
	}
}
