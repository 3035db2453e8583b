package compose

import (
	"time"

	"github.com/appkivawa/pulseboard/app/aggregator"
)

type Bucket int

const (
	BucketExcluded Bucket = iota
	BucketFresh
	BucketToday
	BucketTrending
)

// Windows holds the time-window boundaries for section membership, each
// measured backwards from "now". TrendingFloor must be wider than Today.
type Windows struct {
	Fresh         time.Duration
	Today         time.Duration
	TrendingFloor time.Duration
}

func DefaultWindows() Windows {
	return Windows{
		Fresh:         6 * time.Hour,
		Today:         24 * time.Hour,
		TrendingFloor: 48 * time.Hour,
	}
}

// Classify maps an item to a section bucket. Evaluation order matters: an item
// satisfying both the Fresh and Today predicates classifies as Fresh. An item
// with no effective timestamp is excluded from all time-windowed sections.
func Classify(it aggregator.Item, now time.Time, w Windows) Bucket {
	ts := it.EffectiveTimestamp()
	if ts == nil {
		return BucketExcluded
	}

	freshCutoff := now.Add(-w.Fresh)
	todayCutoff := now.Add(-w.Today)
	trendingFloor := now.Add(-w.TrendingFloor)

	switch {
	case !ts.Before(freshCutoff):
		return BucketFresh
	case !ts.Before(todayCutoff):
		return BucketToday
	case !ts.Before(trendingFloor):
		return BucketTrending
	default:
		return BucketExcluded
	}
}
