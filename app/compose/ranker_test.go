package compose

import (
	"testing"

	"github.com/appkivawa/pulseboard/app/aggregator"
)

func scoredItem(id string, score float64) aggregator.Item {
	return aggregator.Item{ID: id, Source: "rss", Title: id, Score: &score}
}

func TestRankTrending_ScoreDescending(t *testing.T) {
	items := []aggregator.Item{
		scoredItem("low", 1),
		scoredItem("high", 9),
		scoredItem("mid", 5),
	}

	ranked := RankTrending(items)

	want := []string{"high", "mid", "low"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, ranked[i].ID)
		}
	}
}

func TestRankTrending_StableOnTies(t *testing.T) {
	// Equal-score items must keep the order they had in the upstream pool
	items := []aggregator.Item{
		scoredItem("first", 5),
		scoredItem("second", 5),
		scoredItem("third", 5),
		scoredItem("top", 8),
	}

	ranked := RankTrending(items)

	want := []string{"top", "first", "second", "third"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, ranked[i].ID)
		}
	}
}

func TestRankTrending_MissingScoreIsZero(t *testing.T) {
	negative := -1.0
	items := []aggregator.Item{
		{ID: "unscored", Source: "rss", Title: "unscored"},
		scoredItem("scored", 3),
		{ID: "negative", Source: "rss", Title: "negative", Score: &negative},
	}

	ranked := RankTrending(items)

	want := []string{"scored", "unscored", "negative"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, ranked[i].ID)
		}
	}
}

func TestRankTrending_DoesNotMutateInput(t *testing.T) {
	items := []aggregator.Item{
		scoredItem("low", 1),
		scoredItem("high", 9),
	}

	RankTrending(items)

	if items[0].ID != "low" || items[1].ID != "high" {
		t.Error("RankTrending should not reorder its input slice")
	}
}
