package compose

import (
	"time"

	"github.com/appkivawa/pulseboard/app/aggregator"
)

// Builder produces the ordered section list for one composition pass. Sections
// are built in fixed order Fresh, Today, Trending; an item id is placed in at
// most one section. Fresh and Today candidates arrive pre-windowed from the
// upstream; the Trending bucket is derived locally from the full pool.
type Builder struct {
	cfg *Config
}

func NewBuilder(cfg *Config) *Builder {
	return &Builder{cfg: cfg}
}

// Run composes the display sections from one aggregator response. Given
// identical inputs the output is identical: the pass is deterministic, with
// the dedup accumulator threaded through the fixed section sequence rather
// than held as ambient state.
func (b *Builder) Run(resp *aggregator.FeedResponse, now time.Time) []Section {
	seen := make(seenSet)
	sections := make([]Section, 0, 3)

	// Fresh is processed first: an item satisfying both the fresh and today
	// windows lands in Fresh only. Upstream order is preserved.
	fresh, seen := takeUnseen(resp.Fresh, seen, b.cfg.Cap)
	sections = appendSection(sections, "fresh", b.cfg.Titles.Fresh, fresh)

	today, seen := takeUnseen(resp.Today, seen, b.cfg.Cap)
	sections = appendSection(sections, "today", b.cfg.Titles.Today, today)

	trending, _ := takeUnseen(b.trendingCandidates(resp.Feed, now), seen, b.cfg.Cap)
	sections = appendSection(sections, "trending", b.cfg.Titles.Trending, trending)

	return sections
}

// trendingCandidates selects the 24-48h window from the full pool and ranks it
// by score before the dedup filter and cap apply.
func (b *Builder) trendingCandidates(pool []aggregator.Item, now time.Time) []aggregator.Item {
	windows := b.cfg.windows()

	var candidates []aggregator.Item
	for _, it := range pool {
		if Classify(it, now, windows) == BucketTrending {
			candidates = append(candidates, it)
		}
	}

	return RankTrending(candidates)
}

type seenSet map[string]struct{}

// takeUnseen filters candidates down to ids not yet placed, marks each pick as
// seen immediately upon inclusion, and stops at the section cap. Candidates
// skipped by the cap are not marked seen and remain eligible for a later
// section. The grown accumulator is returned alongside the picks.
func takeUnseen(candidates []aggregator.Item, seen seenSet, limit int) ([]FeedItem, seenSet) {
	picked := make([]FeedItem, 0, limit)
	for _, it := range candidates {
		if len(picked) >= limit {
			break
		}
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		picked = append(picked, NewFeedItem(it))
	}
	return picked, seen
}

// appendSection emits a section only when it has at least one qualifying item;
// empty sections are omitted entirely, not emitted empty.
func appendSection(sections []Section, id string, title SectionTitle, items []FeedItem) []Section {
	if len(items) == 0 {
		return sections
	}
	return append(sections, Section{
		ID:       id,
		Title:    title.Title,
		Subtitle: title.Subtitle,
		Items:    items,
	})
}
