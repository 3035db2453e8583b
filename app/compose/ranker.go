package compose

import (
	"sort"

	"github.com/appkivawa/pulseboard/app/aggregator"
)

// RankTrending orders the trending-eligible candidates by descending score,
// treating a missing score as 0. The sort is stable: ties keep the relative
// order they had in the upstream pool, so equal-score items do not reshuffle
// across reloads. The input slice is not modified.
func RankTrending(items []aggregator.Item) []aggregator.Item {
	ranked := make([]aggregator.Item, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ScoreValue() > ranked[j].ScoreValue()
	})

	return ranked
}
