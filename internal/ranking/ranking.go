// Package ranking orders, deduplicates and truncates recommendation lists.
package ranking

import (
	"sort"

	"github.com/gamesoul/gamesoul/internal/models"
)

// SortByScore orders recs by score descending in place. Equal scores keep
// their input order.
func SortByScore(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}

// DedupByID keeps the first occurrence of each item id.
func DedupByID(recs []models.Recommendation) []models.Recommendation {
	seen := make(map[string]bool, len(recs))
	out := make([]models.Recommendation, 0, len(recs))
	for _, r := range recs {
		if seen[r.ItemID] {
			continue
		}
		seen[r.ItemID] = true
		out = append(out, r)
	}
	return out
}

// Top returns at most k recommendations. A non-positive k returns an empty list.
func Top(recs []models.Recommendation, k int) []models.Recommendation {
	if k <= 0 {
		return []models.Recommendation{}
	}
	if len(recs) > k {
		return recs[:k]
	}
	return recs
}

// Merge concatenates lists, sorts the result by score, collapses duplicate
// item ids and keeps the top k.
func Merge(k int, lists ...[]models.Recommendation) []models.Recommendation {
	var combined []models.Recommendation
	for _, l := range lists {
		combined = append(combined, l...)
	}
	SortByScore(combined)
	return Top(DedupByID(combined), k)
}
