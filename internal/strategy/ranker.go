package strategy

import (
	"sort"

	"StockRanker/internal/model"
)

// DefaultTopN is how many symbols a ranking keeps when not configured.
const DefaultTopN = 4

// Rank orders scores by total descending and returns at most topN entries.
// Equal totals keep their input order (Index ascending). topN <= 0 keeps all.
// Scores are compared raw, with no normalization across symbols.
func Rank(scores []model.SymbolScore, topN int) []model.RankEntry {
	sorted := make([]model.SymbolScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return sorted[i].Index < sorted[j].Index
	})

	if topN > 0 && len(sorted) > topN {
		sorted = sorted[:topN]
	}
	out := make([]model.RankEntry, len(sorted))
	for i, s := range sorted {
		out[i] = model.RankEntry{
			Rank:      i + 1,
			Symbol:    s.Symbol,
			Score:     s.Total,
			Failed:    s.Failed(),
			HasSignal: s.HasSignal(),
		}
	}
	return out
}
