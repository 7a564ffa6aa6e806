// Package fuzzy provides the in-memory similarity index the row resolver
// consults for free-text terms. The index is built once per snapshot refresh
// and is immutable afterwards.
package fuzzy

import (
	"sort"
	"strings"
)

// Match is one ranked candidate: the document id passed to Add and a
// similarity score in [0,1], higher is closer.
type Match struct {
	ID    int
	Score float64
}

// Index is a trigram inverted index over normalized text fields with
// Damerau-Levenshtein ranking of the retrieved candidates.
type Index struct {
	threshold float64
	fields    map[int][]string        // doc id -> normalized field values
	inv       map[string]map[int]bool // trigram -> doc ids
}

// NewIndex creates an empty index. threshold is the minimum similarity a
// candidate must reach to be returned.
func NewIndex(threshold float64) *Index {
	return &Index{
		threshold: threshold,
		fields:    make(map[int][]string),
		inv:       make(map[string]map[int]bool),
	}
}

// Add indexes one document under the given normalized field values. Empty
// fields are skipped.
func (ix *Index) Add(id int, fields ...string) {
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		kept = append(kept, f)
		for g := range trigramSet(f) {
			bucket, ok := ix.inv[g]
			if !ok {
				bucket = make(map[int]bool)
				ix.inv[g] = bucket
			}
			bucket[id] = true
		}
	}
	if len(kept) > 0 {
		ix.fields[id] = kept
	}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.fields)
}

// Search returns candidates whose best field similarity against the
// normalized query reaches the threshold, ranked by score descending with
// the id as a deterministic tie-break.
func (ix *Index) Search(normQuery string) []Match {
	if normQuery == "" {
		return nil
	}

	seen := make(map[int]bool)
	for g := range trigramSet(normQuery) {
		for id := range ix.inv[g] {
			seen[id] = true
		}
	}

	matches := make([]Match, 0, len(seen))
	for id := range seen {
		best := 0.0
		for _, f := range ix.fields[id] {
			if s := bestSimilarity(normQuery, f); s > best {
				best = s
			}
		}
		if best >= ix.threshold {
			matches = append(matches, Match{ID: id, Score: best})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	return matches
}

func trigramSet(s string) map[string]bool {
	m := make(map[string]bool)
	if s == "" {
		return m
	}
	r := []rune(" " + s + " ")
	if len(r) < 3 {
		m[string(r)] = true
		return m
	}
	for i := 0; i <= len(r)-3; i++ {
		m[string(r[i:i+3])] = true
	}
	return m
}

func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	d := damerauLevenshtein(a, b)
	m := len([]rune(a))
	if mb := len([]rune(b)); mb > m {
		m = mb
	}
	return 1 - float64(d)/float64(m)
}

// tokenSort makes the comparison stable against word reordering
// ("lola 250ml" vs "250ml lola").
func tokenSort(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

// bestSimilarity compares the query against the whole field, the
// token-sorted field, and each field token on its own. The per-token pass is
// what lets a short query ("lola") score against a long product name
// ("lola 250 ml") the way a substring match would.
func bestSimilarity(a, b string) float64 {
	best := similarity(a, b)
	if s := similarity(tokenSort(a), tokenSort(b)); s > best {
		best = s
	}
	for _, tok := range strings.Fields(b) {
		if s := similarity(a, tok); s > best {
			best = s
		}
	}
	return best
}
