package aggregator

import (
	"time"
)

// Item is one content entry as returned by the upstream aggregator. The id is
// opaque and may be namespaced (e.g. "feed_items:<uuid>"); it is unique within
// one response but not guaranteed stable across upstream redeployments.
type Item struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Kind        string         `json:"kind,omitempty"`
	Title       string         `json:"title"`
	Summary     string         `json:"summary,omitempty"`
	Author      string         `json:"author,omitempty"`
	URL         string         `json:"url,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Topics      []string       `json:"topics,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Score       *float64       `json:"score,omitempty"`
}

// EffectiveTimestamp returns the best-available time for the item, preferring
// the explicit publish time over the ingestion time carried in metadata.
// Returns nil when neither is usable.
func (it Item) EffectiveTimestamp() *time.Time {
	if it.PublishedAt != nil {
		return it.PublishedAt
	}
	raw, ok := it.Metadata["ingested_at"].(string)
	if !ok {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &ts
}

// ScoreValue returns the relevance score, treating a missing score as 0.
func (it Item) ScoreValue() float64 {
	if it.Score == nil {
		return 0
	}
	return *it.Score
}

// FeedResponse is the aggregator's answer to a feed composition request. The
// fresh and today buckets arrive pre-windowed by the upstream and may overlap.
type FeedResponse struct {
	Feed  []Item `json:"feed"`
	Fresh []Item `json:"fresh,omitempty"`
	Today []Item `json:"today,omitempty"`
	Error string `json:"error,omitempty"`
}

// ExploreResponse is one page of the cursor-paginated explore stream. An empty
// NextCursor signals no further pages.
type ExploreResponse struct {
	Items      []Item `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
	Error      string `json:"error,omitempty"`
}
